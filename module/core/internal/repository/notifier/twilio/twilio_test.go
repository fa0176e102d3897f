package twilio

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iammanojeet/SHecurity/module/core/domain"
)

type recordedRequest struct {
	path string
	form map[string]string
	user string
	pass string
}

func newTestNotifier(handler http.HandlerFunc) (*Notifier, *httptest.Server) {
	srv := httptest.NewServer(handler)
	n := New("AC123", "token", "+15550000000")
	n.baseURL = srv.URL
	n.client = srv.Client()
	return n, srv
}

func recordRequests(t *testing.T, reqs *[]recordedRequest, status int) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
			return
		}
		form := map[string]string{}
		for k := range r.PostForm {
			form[k] = r.PostForm.Get(k)
		}
		user, pass, _ := r.BasicAuth()
		*reqs = append(*reqs, recordedRequest{path: r.URL.Path, form: form, user: user, pass: pass})
		w.WriteHeader(status)
	}
}

func testPosition() domain.Position {
	return domain.Position{
		Coordinate: domain.Coordinate{Lat: 37.7749, Lon: -122.4194},
		Timestamp:  time.Unix(1715003456, 0),
	}
}

func TestSendAlert_TextThenCall(t *testing.T) {
	var reqs []recordedRequest
	n, srv := newTestNotifier(recordRequests(t, &reqs, http.StatusCreated))
	defer srv.Close()

	d, err := n.SendAlert(context.Background(), "+15551234567", testPosition())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !d.TextSent || !d.CallPlaced {
		t.Fatalf("expected both halves delivered, got %+v", d)
	}

	if len(reqs) != 2 {
		t.Fatalf("expected 2 provider requests, got %d", len(reqs))
	}

	msg := reqs[0]
	if msg.path != "/Accounts/AC123/Messages.json" {
		t.Errorf("expected message request first, got %s", msg.path)
	}
	if msg.form["To"] != "+15551234567" || msg.form["From"] != "+15550000000" {
		t.Errorf("unexpected message addressing: %v", msg.form)
	}
	wantBody := "🚨 HELP! Here is my location: https://www.google.com/maps?q=37.7749,-122.4194"
	if msg.form["Body"] != wantBody {
		t.Errorf("expected body %q, got %q", wantBody, msg.form["Body"])
	}
	if msg.user != "AC123" || msg.pass != "token" {
		t.Errorf("unexpected basic auth: %s/%s", msg.user, msg.pass)
	}

	call := reqs[1]
	if call.path != "/Accounts/AC123/Calls.json" {
		t.Errorf("expected call request second, got %s", call.path)
	}
	if call.form["To"] != "+15551234567" {
		t.Errorf("expected call to +15551234567, got %s", call.form["To"])
	}
	if !strings.Contains(call.form["Twiml"], "Check your SMS") {
		t.Errorf("unexpected twiml: %q", call.form["Twiml"])
	}
}

func TestSendAlert_TextFails_NoCallAttempted(t *testing.T) {
	var reqs []recordedRequest
	n, srv := newTestNotifier(recordRequests(t, &reqs, http.StatusUnauthorized))
	defer srv.Close()

	d, err := n.SendAlert(context.Background(), "+15551234567", testPosition())
	if err == nil {
		t.Fatal("expected error")
	}
	if d.TextSent || d.CallPlaced {
		t.Fatalf("expected nothing delivered, got %+v", d)
	}
	if d.Detail == "" || !strings.Contains(d.Detail, "401") {
		t.Errorf("expected provider detail with status, got %q", d.Detail)
	}
	// The voice call must not be attempted after the text fails.
	if len(reqs) != 1 {
		t.Fatalf("expected 1 provider request, got %d", len(reqs))
	}
}

func TestSendAlert_CallFails_PartialDelivery(t *testing.T) {
	var reqs []recordedRequest
	n, srv := newTestNotifier(func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusCreated
		if strings.HasSuffix(r.URL.Path, "Calls.json") {
			status = http.StatusTooManyRequests
		}
		recordRequests(t, &reqs, status)(w, r)
	})
	defer srv.Close()

	d, err := n.SendAlert(context.Background(), "+15551234567", testPosition())
	if err == nil {
		t.Fatal("expected error")
	}
	if !d.TextSent {
		t.Error("expected the text half to be reported as sent")
	}
	if d.CallPlaced {
		t.Error("expected the call half to be reported as failed")
	}
	if !strings.Contains(d.Detail, "429") {
		t.Errorf("expected provider detail with status, got %q", d.Detail)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 provider requests, got %d", len(reqs))
	}
}

func TestFormatCoord(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{37.7749, "37.7749"},
		{-122.4194, "-122.4194"},
		{0, "0"},
	}
	for _, tc := range cases {
		if got := formatCoord(tc.in); got != tc.want {
			t.Errorf("formatCoord(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
