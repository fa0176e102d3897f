package service

import (
	"strings"
	"sync"
)

// Trigger sources reported to the fire callback.
const (
	TriggerManual = "manual"
	TriggerVoice  = "voice"
)

// keywords that request an alert when heard anywhere in the transcript.
var keywords = []string{"help", "emergency", "police"}

// TriggerService turns recognized utterance fragments and manual help
// presses into alert-requested signals.
//
// Utterance fragments accumulate into a transcript buffer; when the
// lowercased buffer contains a keyword, the service fires once and clears
// the buffer, so a single utterance cannot re-trigger no matter how many
// keywords it contains. A keyword in a later utterance fires again; a user
// saying "help" twice should alert twice.
type TriggerService struct {
	mu         sync.Mutex
	listening  bool
	transcript strings.Builder

	// fire is invoked once per alert-requested signal with the trigger
	// source. It must not block; long work belongs in its own goroutine.
	fire func(source string)
}

func NewTriggerService(fire func(source string)) *TriggerService {
	return &TriggerService{
		listening: true,
		fire:      fire,
	}
}

func (s *TriggerService) Listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listening
}

// SetListening toggles utterance consumption. Turning it off clears the
// transcript buffer; in-flight dispatches are unaffected.
func (s *TriggerService) SetListening(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listening = on
	if !on {
		s.transcript.Reset()
	}
}

// OnUtterance feeds one recognized fragment (partial or final) into the
// transcript. It reports whether an alert was requested. Fragments are
// ignored while not listening.
func (s *TriggerService) OnUtterance(text string) bool {
	s.mu.Lock()
	if !s.listening {
		s.mu.Unlock()
		return false
	}

	if s.transcript.Len() > 0 {
		s.transcript.WriteByte(' ')
	}
	s.transcript.WriteString(text)

	transcript := strings.ToLower(strings.TrimSpace(s.transcript.String()))
	fired := false
	for _, kw := range keywords {
		if strings.Contains(transcript, kw) {
			fired = true
			break
		}
	}
	if fired {
		s.transcript.Reset()
	}
	s.mu.Unlock()

	if fired && s.fire != nil {
		s.fire(TriggerVoice)
	}
	return fired
}

// OnManual handles a help-button press. It always fires, bypassing keyword
// matching and the listening state.
func (s *TriggerService) OnManual() bool {
	if s.fire != nil {
		s.fire(TriggerManual)
	}
	return true
}
