package ews

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Azure/go-ntlmssp"

	"github.com/calmux/calmux/internal/model"
)

const (
	soapHeader = `<?xml version="1.0" encoding="utf-8"?>
<soap:Envelope xmlns:soap="http://schemas.xmlsoap.org/soap/envelope/"
               xmlns:t="http://schemas.microsoft.com/exchange/services/2006/types"
               xmlns:m="http://schemas.microsoft.com/exchange/services/2006/messages">
  <soap:Header>
    <t:RequestServerVersion Version="Exchange2013"/>
  </soap:Header>
  <soap:Body>
`
	soapFooter = `
  </soap:Body>
</soap:Envelope>`

	ewsTimeLayout = "2006-01-02T15:04:05"
)

// newTransport wires NTLM negotiation into the HTTP client. The negotiator
// picks the credentials up from the request's basic auth header and
// upgrades to NTLM when the server demands it.
func newTransport() http.RoundTripper {
	return ntlmssp.Negotiator{
		RoundTripper: &http.Transport{},
	}
}

// call posts one SOAP body to the EWS endpoint and decodes the envelope.
func (c *Client) call(ctx context.Context, op, body string) (*soapBody, error) {
	payload := soapHeader + body + soapFooter

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(payload))
	if err != nil {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS, op, err.Error(), err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, model.NewProviderError(model.ErrKindUnavailable, model.ProviderEWS, op, err.Error(), err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return nil, model.NewProviderError(model.ErrKindAuthFailure, model.ProviderEWS, op,
			"exchange rejected NTLM credentials", nil)
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		pe := model.NewProviderError(model.ErrKindUnavailable, model.ProviderEWS, op, resp.Status, nil)
		pe.RetryAfter = 30 * time.Second
		return nil, pe
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS, op, err.Error(), err)
	}

	var envelope soapEnvelope
	if err := xml.Unmarshal(data, &envelope); err != nil {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS, op,
			fmt.Sprintf("malformed SOAP response: %v", err), err)
	}
	if envelope.Body.Fault != nil {
		return nil, model.NewProviderError(model.ErrKindInternal, model.ProviderEWS, op,
			envelope.Body.Fault.FaultString, nil)
	}
	return &envelope.Body, nil
}

// checkResponse classifies an EWS response message. EWS reports errors via
// ResponseClass/ResponseCode inside an HTTP 200.
func checkResponse(rm responseMessage, op string) error {
	if rm.ResponseClass != "Error" {
		return nil
	}
	kind := model.ErrKindInternal
	switch rm.ResponseCode {
	case "ErrorItemNotFound", "ErrorFolderNotFound":
		kind = model.ErrKindNotFound
	case "ErrorAccessDenied":
		kind = model.ErrKindPermissionDenied
	case "ErrorServerBusy":
		kind = model.ErrKindRateLimited
	case "ErrorIrresolvableConflict":
		kind = model.ErrKindConflict
	case "ErrorInvalidRequest", "ErrorSchemaValidation":
		kind = model.ErrKindInvalidInput
	}
	pe := model.NewProviderError(kind, model.ProviderEWS, op, rm.MessageText, nil)
	if kind == model.ErrKindRateLimited {
		pe.RetryAfter = time.Minute
	}
	return pe
}

// esc XML-escapes user-supplied text for envelope interpolation.
func esc(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
