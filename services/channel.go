package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"vetclinic-backend/config"
)

// ChannelResponse is what a provider reports back for one delivery attempt.
type ChannelResponse struct {
	MessageID string
	Cost      float64
}

// Channel delivers a single message to a single recipient. The dispatcher
// treats it as opaque: any error, transport or provider-side, is one failed
// attempt. Implementations must not retry on their own.
type Channel interface {
	Send(ctx context.Context, phone, message string) (ChannelResponse, error)
}

// KavenegarChannel talks to the Kavenegar REST API.
type KavenegarChannel struct {
	apiKey string
	apiURL string
	sender string
	client *http.Client
}

func NewKavenegarChannel(cfg config.SMSConfig) *KavenegarChannel {
	return &KavenegarChannel{
		apiKey: cfg.KavenegarAPIKey,
		apiURL: strings.TrimRight(cfg.KavenegarAPIURL, "/"),
		sender: cfg.Sender,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type kavenegarResponse struct {
	Return struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"return"`
	Entries []struct {
		MessageID int64   `json:"messageid"`
		Cost      float64 `json:"cost"`
	} `json:"entries"`
}

func (k *KavenegarChannel) Send(ctx context.Context, phone, message string) (ChannelResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/sms/send.json", k.apiURL, k.apiKey)

	form := url.Values{}
	form.Set("receptor", phone)
	form.Set("message", message)
	form.Set("sender", k.sender)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return ChannelResponse{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := k.client.Do(req)
	if err != nil {
		return ChannelResponse{}, err
	}
	defer resp.Body.Close()

	var body kavenegarResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ChannelResponse{}, fmt.Errorf("decode provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || body.Return.Status != 200 {
		return ChannelResponse{}, fmt.Errorf("provider rejected message: status %d (%s)", body.Return.Status, body.Return.Message)
	}
	if len(body.Entries) == 0 {
		return ChannelResponse{}, fmt.Errorf("provider returned no delivery entry")
	}

	entry := body.Entries[0]
	return ChannelResponse{
		MessageID: strconv.FormatInt(entry.MessageID, 10),
		Cost:      entry.Cost,
	}, nil
}

// TwilioChannel delivers through the Twilio Messaging API.
type TwilioChannel struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioChannel(cfg config.SMSConfig) *TwilioChannel {
	return &TwilioChannel{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioFromNumber,
	}
}

func (t *TwilioChannel) Send(ctx context.Context, phone, message string) (ChannelResponse, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo("+" + phone)
	params.SetFrom(t.from)
	params.SetBody(message)

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return ChannelResponse{}, err
	}

	out := ChannelResponse{}
	if resp.Sid != nil {
		out.MessageID = *resp.Sid
	}
	if resp.Price != nil {
		if cost, err := strconv.ParseFloat(*resp.Price, 64); err == nil {
			out.Cost = -cost // Twilio reports prices as negative amounts
		}
	}
	return out, nil
}

// NewChannel picks the configured provider implementation.
func NewChannel(cfg config.SMSConfig) Channel {
	if cfg.Provider == "twilio" {
		return NewTwilioChannel(cfg)
	}
	return NewKavenegarChannel(cfg)
}
