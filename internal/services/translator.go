package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/go-resty/resty/v2"

	"github.com/hmmwtf/team30-aws-hackathon-sub000/internal/models"
)

// AutoDetect asks the backend to detect the source language.
const AutoDetect = "auto"

// Translator turns text into the target language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (models.Translation, error)
}

// TranslateAPI is the subset of the AWS Translate client in use.
type TranslateAPI interface {
	TranslateText(ctx context.Context, in *translate.TranslateTextInput, optFns ...func(*translate.Options)) (*translate.TranslateTextOutput, error)
}

// AWSTranslator calls Amazon Translate.
type AWSTranslator struct {
	client  TranslateAPI
	timeout time.Duration
}

func NewAWSTranslator(client TranslateAPI, timeout time.Duration) *AWSTranslator {
	return &AWSTranslator{client: client, timeout: timeout}
}

func (t *AWSTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (models.Translation, error) {
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	source := strings.TrimSpace(sourceLang)
	if source == "" {
		source = AutoDetect
	}

	out, err := t.client.TranslateText(ctx, &translate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(strings.TrimSpace(targetLang)),
	})
	if err != nil {
		return models.Translation{}, fmt.Errorf("aws translate: %w", err)
	}
	return models.Translation{
		Text:           aws.ToString(out.TranslatedText),
		SourceLanguage: aws.ToString(out.SourceLanguageCode),
	}, nil
}

// DefaultMyMemoryURL is the public MyMemory endpoint.
const DefaultMyMemoryURL = "https://api.mymemory.translated.net/get"

var defaultLibreMirrors = []string{
	"https://libretranslate.com/translate",
	"https://translate.argosopentech.com/translate",
	"https://libretranslate.de/translate",
}

type PublicTranslatorOptions struct {
	MyMemoryURL  string
	LibreURL     string // tried before the public mirrors
	LibreAPIKey  string
	LibreMirrors []string
	Timeout      time.Duration
}

// PublicTranslator tries MyMemory first, then each LibreTranslate endpoint.
type PublicTranslator struct {
	http        *resty.Client
	myMemoryURL string
	libreURLs   []string
	libreAPIKey string
}

func NewPublicTranslator(opts PublicTranslatorOptions) *PublicTranslator {
	if opts.MyMemoryURL == "" {
		opts.MyMemoryURL = DefaultMyMemoryURL
	}
	if opts.LibreMirrors == nil {
		opts.LibreMirrors = defaultLibreMirrors
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	var endpoints []string
	if v := strings.TrimSpace(opts.LibreURL); v != "" {
		endpoints = append(endpoints, v)
	}
	endpoints = append(endpoints, opts.LibreMirrors...)

	client := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "culturechat-backend/translator")

	return &PublicTranslator{
		http:        client,
		myMemoryURL: opts.MyMemoryURL,
		libreURLs:   endpoints,
		libreAPIKey: strings.TrimSpace(opts.LibreAPIKey),
	}
}

func (p *PublicTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (models.Translation, error) {
	source := normalizeLang(sourceLang)
	target := normalizeLang(targetLang)

	if tr, err := p.myMemory(ctx, text, source, target); err == nil {
		return tr, nil
	}

	tr, err := p.libre(ctx, text, source, target)
	if err != nil {
		return models.Translation{}, fmt.Errorf("translation failed: %w", err)
	}
	return tr, nil
}

type myMemoryResponse struct {
	ResponseData struct {
		TranslatedText string `json:"translatedText"`
		DetectedLang   string `json:"detectedLanguage"`
	} `json:"responseData"`
	ResponseStatus  int    `json:"responseStatus"`
	ResponseDetails string `json:"responseDetails"`
}

func (p *PublicTranslator) myMemory(ctx context.Context, text, source, target string) (models.Translation, error) {
	pairSource := source
	if pairSource == "" || pairSource == AutoDetect {
		pairSource = "autodetect"
	}

	var mm myMemoryResponse
	resp, err := p.http.R().
		SetContext(ctx).
		SetQueryParam("q", text).
		SetQueryParam("langpair", pairSource+"|"+target).
		SetResult(&mm).
		Get(p.myMemoryURL)
	if err != nil {
		return models.Translation{}, err
	}
	if resp.IsError() {
		return models.Translation{}, fmt.Errorf("mymemory %d: %s", resp.StatusCode(), preview(resp.String()))
	}
	if mm.ResponseStatus == 200 && strings.TrimSpace(mm.ResponseData.TranslatedText) != "" {
		detected := source
		if mm.ResponseData.DetectedLang != "" {
			detected = mm.ResponseData.DetectedLang
		}
		return models.Translation{Text: mm.ResponseData.TranslatedText, SourceLanguage: detected}, nil
	}
	if mm.ResponseDetails != "" {
		return models.Translation{}, fmt.Errorf("mymemory error: %s", mm.ResponseDetails)
	}
	return models.Translation{}, errors.New("mymemory returned empty translation")
}

type libreRequest struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format,omitempty"`
	APIKey string `json:"api_key,omitempty"`
}

type libreResponse struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage struct {
		Language string `json:"language"`
	} `json:"detectedLanguage"`
}

func (p *PublicTranslator) libre(ctx context.Context, text, source, target string) (models.Translation, error) {
	if source == "" {
		source = AutoDetect
	}
	body := libreRequest{Q: text, Source: source, Target: target, Format: "text", APIKey: p.libreAPIKey}

	var lastErr error
	for _, endpoint := range p.libreURLs {
		var out libreResponse
		resp, err := p.http.R().
			SetContext(ctx).
			SetBody(body).
			SetResult(&out).
			Post(endpoint)
		if err != nil {
			if ctx.Err() != nil {
				return models.Translation{}, ctx.Err()
			}
			lastErr = err
			continue
		}
		// Some mirrors answer with HTML (e.g. Cloudflare); try the next one.
		if resp.IsError() {
			lastErr = fmt.Errorf("libretranslate %d from %s: %s", resp.StatusCode(), endpoint, preview(resp.String()))
			continue
		}
		if strings.TrimSpace(out.TranslatedText) == "" {
			lastErr = fmt.Errorf("empty translation from %s", endpoint)
			continue
		}
		detected := source
		if out.DetectedLanguage.Language != "" {
			detected = out.DetectedLanguage.Language
		}
		return models.Translation{Text: out.TranslatedText, SourceLanguage: detected}, nil
	}
	if lastErr == nil {
		lastErr = errors.New("no libretranslate endpoint configured")
	}
	return models.Translation{}, lastErr
}

// ChainTranslator returns the first successful translation.
type ChainTranslator []Translator

func (c ChainTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (models.Translation, error) {
	var errs []error
	for _, t := range c {
		tr, err := t.Translate(ctx, text, sourceLang, targetLang)
		if err == nil {
			return tr, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return models.Translation{}, errors.New("no translator configured")
	}
	return models.Translation{}, errors.Join(errs...)
}

func normalizeLang(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func preview(s string) string {
	if len(s) > 500 {
		return s[:500] + "..."
	}
	return s
}
