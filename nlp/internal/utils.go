package internal

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/go-resty/resty/v2"
	"github.com/pkoukk/tiktoken-go"
	datautils "github.com/soumitsalman/data-utils"
)

const (
	ShortDelay      = 10 * time.Millisecond
	LongDelay       = 2 * time.Second
	_RETRY_ATTEMPTS = 3
	// the serving models top out around 512 tokens of useful context for a
	// single note. anything longer is almost certainly pasted garbage
	_MAX_INPUT_TOKENS = 2048
)

func PostHTTPRequest[T any](ctx context.Context, url, auth_token string, input any) (T, error) {
	var result T
	req := resty.New().
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		R().
		SetContext(ctx).
		SetBody(input).
		SetResult(&result)
	if auth_token != "" {
		req = req.SetAuthToken(auth_token)
	}
	resp, err := req.Post(url)
	if err != nil {
		return result, err
	}
	if resp.IsError() {
		return result, InferenceServerError(resp.Status())
	}
	return result, nil
}

func PostHTTPRequestAndRetryOnFail[T any](ctx context.Context, url, auth_token string, input any) (T, error) {
	var result T
	var err error
	retry_err := retry.Do(
		func() error {
			result, err = PostHTTPRequest[T](ctx, url, auth_token, input)
			return err
		},
		retry.Attempts(_RETRY_ATTEMPTS),
		retry.Delay(ShortDelay),
		retry.Context(ctx),
		retry.LastErrorOnly(true),
	)
	return result, retry_err
}

func TruncateTextOnTokenCount(text string) string {
	tk, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return text
	}
	return tk.Decode(
		datautils.SafeSlice(
			tk.Encode(text, nil, nil),
			0, _MAX_INPUT_TOKENS,
		),
	)
}

type InferenceServerError string

func (err InferenceServerError) Error() string {
	return string(err)
}
