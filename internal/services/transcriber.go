package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/transcribe"
	ttypes "github.com/aws/aws-sdk-go-v2/service/transcribe/types"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTranscribeLanguage is used when the upload does not name one.
const DefaultTranscribeLanguage = "ko-KR"

var (
	ErrTranscriptionFailed  = errors.New("transcription job failed")
	ErrTranscriptionTimeout = errors.New("transcription did not finish in time")
	ErrNoTranscribeBucket   = errors.New("transcribe bucket not configured")
)

// ObjectUploader is the subset of the S3 client used to stage audio.
type ObjectUploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// TranscribeAPI is the subset of the Transcribe client in use.
type TranscribeAPI interface {
	StartTranscriptionJob(ctx context.Context, in *transcribe.StartTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.StartTranscriptionJobOutput, error)
	GetTranscriptionJob(ctx context.Context, in *transcribe.GetTranscriptionJobInput, optFns ...func(*transcribe.Options)) (*transcribe.GetTranscriptionJobOutput, error)
}

type TranscriberOptions struct {
	Bucket       string
	PollInterval time.Duration
	PollTimeout  time.Duration
	HTTP         *resty.Client
	Logger       zerolog.Logger
}

// Transcriber stages audio in S3, runs an async Transcribe job and polls it.
type Transcriber struct {
	s3       ObjectUploader
	api      TranscribeAPI
	http     *resty.Client
	bucket   string
	interval time.Duration
	timeout  time.Duration
	log      zerolog.Logger
}

func NewTranscriber(uploader ObjectUploader, api TranscribeAPI, opts TranscriberOptions) *Transcriber {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = 30 * time.Second
	}
	if opts.HTTP == nil {
		opts.HTTP = resty.New().SetTimeout(10 * time.Second)
	}
	return &Transcriber{
		s3:       uploader,
		api:      api,
		http:     opts.HTTP,
		bucket:   opts.Bucket,
		interval: opts.PollInterval,
		timeout:  opts.PollTimeout,
		log:      opts.Logger,
	}
}

// Transcribe returns the text spoken in audio. filename is only used to pick the media format.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename, languageCode string) (string, error) {
	if t.bucket == "" {
		return "", ErrNoTranscribeBucket
	}
	if languageCode == "" {
		languageCode = DefaultTranscribeLanguage
	}
	format := mediaFormat(filename)
	jobName := "culturechat-" + uuid.NewString()
	key := "audio/" + jobName + "." + string(format)

	if _, err := t.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(t.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(audio),
	}); err != nil {
		return "", fmt.Errorf("upload audio: %w", err)
	}

	if _, err := t.api.StartTranscriptionJob(ctx, &transcribe.StartTranscriptionJobInput{
		TranscriptionJobName: aws.String(jobName),
		LanguageCode:         ttypes.LanguageCode(languageCode),
		MediaFormat:          format,
		Media:                &ttypes.Media{MediaFileUri: aws.String("s3://" + t.bucket + "/" + key)},
	}); err != nil {
		return "", fmt.Errorf("start transcription job: %w", err)
	}
	t.log.Debug().Str("job", jobName).Str("language", languageCode).Msg("transcription job started")

	uri, err := t.wait(ctx, jobName)
	if err != nil {
		return "", err
	}
	return t.fetchTranscript(ctx, uri)
}

func (t *Transcriber) wait(ctx context.Context, jobName string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return "", fmt.Errorf("%w: job %s", ErrTranscriptionTimeout, jobName)
			}
			return "", ctx.Err()
		case <-ticker.C:
		}

		out, err := t.api.GetTranscriptionJob(ctx, &transcribe.GetTranscriptionJobInput{
			TranscriptionJobName: aws.String(jobName),
		})
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			return "", fmt.Errorf("get transcription job: %w", err)
		}
		job := out.TranscriptionJob
		if job == nil {
			continue
		}
		switch job.TranscriptionJobStatus {
		case ttypes.TranscriptionJobStatusCompleted:
			if job.Transcript == nil || aws.ToString(job.Transcript.TranscriptFileUri) == "" {
				return "", fmt.Errorf("%w: no transcript uri", ErrTranscriptionFailed)
			}
			return aws.ToString(job.Transcript.TranscriptFileUri), nil
		case ttypes.TranscriptionJobStatusFailed:
			return "", fmt.Errorf("%w: %s", ErrTranscriptionFailed, aws.ToString(job.FailureReason))
		}
	}
}

type transcriptDocument struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

func (t *Transcriber) fetchTranscript(ctx context.Context, uri string) (string, error) {
	var doc transcriptDocument
	resp, err := t.http.R().SetContext(ctx).SetResult(&doc).ForceContentType("application/json").Get(uri)
	if err != nil {
		return "", fmt.Errorf("fetch transcript: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("fetch transcript: status %d", resp.StatusCode())
	}
	parts := make([]string, 0, len(doc.Results.Transcripts))
	for _, tr := range doc.Results.Transcripts {
		parts = append(parts, tr.Transcript)
	}
	return strings.TrimSpace(strings.Join(parts, " ")), nil
}

func mediaFormat(filename string) ttypes.MediaFormat {
	switch strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".") {
	case "mp3":
		return ttypes.MediaFormatMp3
	case "mp4":
		return ttypes.MediaFormatMp4
	case "m4a":
		return ttypes.MediaFormatM4a
	case "wav":
		return ttypes.MediaFormatWav
	case "flac":
		return ttypes.MediaFormatFlac
	case "ogg":
		return ttypes.MediaFormatOgg
	case "amr":
		return ttypes.MediaFormatAmr
	}
	return ttypes.MediaFormatWebm
}
