package test_functional

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
)

func TestDataDefaults(t *testing.T) {
	u := AppBaseURL
	u.Path = "/data"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	type Resp struct {
		Categories []struct {
			Name     string `json:"name"`
			Priority int    `json:"priority"`
		} `json:"categories"`
		Settings struct {
			DefaultIntervalDays int `json:"defaultIntervalDays"`
		} `json:"settings"`
	}

	resp, err := resty.New().
		R().
		SetContext(ctx).
		SetResult(&Resp{}).
		Get(u.String())
	assert.Nil(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode())

	got, ok := resp.Result().(*Resp)
	assert.True(t, ok)
	assert.Equal(t, 7, got.Settings.DefaultIntervalDays)
	assert.NotEmpty(t, got.Categories)
	assert.Equal(t, "Articles", got.Categories[0].Name)
}

func TestBookmarkStatusUnknownID(t *testing.T) {
	u := AppBaseURL
	u.Path = "/bookmark/rv-does-not-exist/status"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	resp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(`{"actionType": "Complete"}`).
		Post(u.String())
	assert.Nil(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestTranscriptUnknownVideo(t *testing.T) {
	u := AppBaseURL
	u.Path = "/transcript/no-such-video"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	resp, err := resty.New().
		R().
		SetContext(ctx).
		Get(u.String())
	assert.Nil(t, err)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode())
}

func TestGatewayTestRequiresKey(t *testing.T) {
	u := AppBaseURL
	u.Path = "/gateway/test"

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	resp, err := resty.New().
		R().
		SetHeader("Content-Type", "application/json").
		SetContext(ctx).
		SetBody(`{}`).
		Post(u.String())
	assert.Nil(t, err)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode())
}
