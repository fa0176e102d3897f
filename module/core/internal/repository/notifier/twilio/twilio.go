package twilio

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iammanojeet/SHecurity/module/core/domain"
	"github.com/iammanojeet/SHecurity/module/core/internal/repository/notifier"
)

var _ notifier.Notifier = (*Notifier)(nil)

const (
	defaultBaseURL = "https://api.twilio.com/2010-04-01"

	voiceTwiml = `<Response><Say>Emergency Alert! Check your SMS for the location.</Say></Response>`
)

// Notifier sends alerts through Twilio's REST API: an SMS with a Google Maps
// link to the position, then a voice call telling the contact to check it.
// The two calls are dependent: if the SMS fails, no call is placed. There
// is deliberately no retry here; retry policy belongs to whoever triggers
// the dispatch.
type Notifier struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	client     *http.Client
}

func New(accountSID, authToken, fromNumber string) *Notifier {
	return &Notifier{
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		baseURL:    defaultBaseURL,
		client:     &http.Client{Timeout: 30 * time.Second},
	}
}

func (n *Notifier) SendAlert(ctx context.Context, phone string, pos domain.Position) (domain.Delivery, error) {
	var d domain.Delivery

	body := fmt.Sprintf("🚨 HELP! Here is my location: https://www.google.com/maps?q=%s,%s",
		formatCoord(pos.Coordinate.Lat), formatCoord(pos.Coordinate.Lon))

	if err := n.createMessage(ctx, phone, body); err != nil {
		d.Detail = err.Error()
		return d, fmt.Errorf("send text: %w", err)
	}
	d.TextSent = true

	if err := n.createCall(ctx, phone); err != nil {
		d.Detail = err.Error()
		return d, fmt.Errorf("place call: %w", err)
	}
	d.CallPlaced = true

	return d, nil
}

func (n *Notifier) createMessage(ctx context.Context, to, body string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.fromNumber)
	form.Set("Body", body)
	return n.post(ctx, "Messages.json", form)
}

func (n *Notifier) createCall(ctx context.Context, to string) error {
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", n.fromNumber)
	form.Set("Twiml", voiceTwiml)
	return n.post(ctx, "Calls.json", form)
}

func (n *Notifier) post(ctx context.Context, resource string, form url.Values) error {
	endpoint := fmt.Sprintf("%s/Accounts/%s/%s", n.baseURL, n.accountSID, resource)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.SetBasicAuth(n.accountSID, n.authToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("twilio: status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return nil
}

// formatCoord renders a coordinate the way it appears in the map link:
// shortest decimal form that round-trips.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
