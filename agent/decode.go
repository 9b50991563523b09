// ABOUTME: Decoders that pull action blocks out of assistant replies
// ABOUTME: Handles the CRM JSON block format and the tour inline tag format
package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrMalformedActions means an action block was present but unreadable.
	// The reply still yields its narration.
	ErrMalformedActions = errors.New("malformed action block")

	// ErrUnknownAction is only returned by a strict Decoder.
	ErrUnknownAction = errors.New("unknown action")
)

var (
	crmBlockPattern = regexp.MustCompile(`<actions>\s*([\s\S]*?)\s*</actions>`)
	tourTagPattern  = regexp.MustCompile(`<action>(.*?)</action>`)
)

// Decoder turns assistant replies into actions. A strict decoder rejects
// unknown action names and bad parameters; the default lenient decoder skips
// them and lists them in Ignored.
type Decoder struct {
	Strict bool
}

type CRMReply struct {
	Actions   []Action
	Narration string
	Ignored   []string
}

type TourReply struct {
	// Action is nil when the reply carries no action tag.
	Action    Action
	Narration string
	Ignored   []string
}

type rawAction struct {
	Action string          `json:"action"`
	Params json.RawMessage `json:"params"`
}

// DecodeCRM reads the first <actions> block of reply. Every block is removed
// from the narration but only the first is decoded. A malformed block yields
// no actions, the narration, and an error wrapping ErrMalformedActions.
func (d Decoder) DecodeCRM(reply string) (CRMReply, error) {
	out := CRMReply{
		Narration: strings.TrimSpace(crmBlockPattern.ReplaceAllString(reply, "")),
	}

	m := crmBlockPattern.FindStringSubmatch(reply)
	if m == nil {
		return out, nil
	}

	var raws []rawAction
	if err := json.Unmarshal([]byte(m[1]), &raws); err != nil {
		return out, fmt.Errorf("%w: %v", ErrMalformedActions, err)
	}

	for _, raw := range raws {
		a, err := decodeCRMAction(raw)
		if err != nil {
			if d.Strict {
				return CRMReply{Narration: out.Narration}, err
			}
			out.Ignored = append(out.Ignored, raw.Action)
			continue
		}
		out.Actions = append(out.Actions, a)
	}
	return out, nil
}

func decodeCRMAction(raw rawAction) (Action, error) {
	params := raw.Params
	if len(bytes.TrimSpace(params)) == 0 || bytes.Equal(bytes.TrimSpace(params), []byte("null")) {
		params = json.RawMessage("{}")
	}

	switch raw.Action {
	case ActionSwitchTab:
		var p SwitchTab
		err := decodeParams(raw.Action, params, &p)
		return p, err
	case ActionAddContact:
		var p AddContact
		err := decodeParams(raw.Action, params, &p)
		return p, err
	case ActionAddDeal:
		var p struct {
			Name      string  `json:"name"`
			ContactID flexInt `json:"contactId"`
			Value     flexInt `json:"value"`
			Stage     string  `json:"stage"`
		}
		err := decodeParams(raw.Action, params, &p)
		return AddDeal{Name: p.Name, ContactID: int64(p.ContactID), Value: int64(p.Value), Stage: p.Stage}, err
	case ActionMoveDeal:
		var p struct {
			DealID flexInt `json:"dealId"`
			Stage  string  `json:"stage"`
		}
		err := decodeParams(raw.Action, params, &p)
		return MoveDeal{DealID: int64(p.DealID), Stage: p.Stage}, err
	case ActionHighlightContact:
		var p struct {
			ContactID flexInt `json:"contactId"`
		}
		err := decodeParams(raw.Action, params, &p)
		return HighlightContact{ContactID: int64(p.ContactID)}, err
	case ActionHighlightDeal:
		var p struct {
			DealID flexInt `json:"dealId"`
		}
		err := decodeParams(raw.Action, params, &p)
		return HighlightDeal{DealID: int64(p.DealID)}, err
	case ActionShowContact:
		var p struct {
			ContactID flexInt `json:"contactId"`
		}
		err := decodeParams(raw.Action, params, &p)
		return ShowContact{ContactID: int64(p.ContactID)}, err
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, raw.Action)
}

func decodeParams(name string, params json.RawMessage, v any) error {
	if err := json.Unmarshal(params, v); err != nil {
		return fmt.Errorf("invalid params for %s: %w", name, err)
	}
	return nil
}

// DecodeTour reads the first <action> tag of reply. All tags are removed
// from the narration.
func (d Decoder) DecodeTour(reply string) (TourReply, error) {
	out := TourReply{
		Narration: strings.TrimSpace(tourTagPattern.ReplaceAllString(reply, "")),
	}

	m := tourTagPattern.FindStringSubmatch(reply)
	if m == nil {
		return out, nil
	}

	tag := strings.TrimSpace(m[1])
	name, args, hasArgs := strings.Cut(tag, ":")
	name = strings.TrimSpace(name)
	parts := append([]string{name}, strings.Split(args, ":")...)

	switch {
	case name == ActionShowVideo && hasArgs:
		ts := "0:00"
		if len(parts) > 2 {
			if joined := strings.TrimSpace(strings.Join(parts[2:], ":")); joined != "" {
				ts = joined
			}
		}
		out.Action = ShowVideo{VideoID: indexArg(parts, 1), Timestamp: ts}
	case name == ActionShowPDF && hasArgs:
		out.Action = ShowPDF{PDFID: indexArg(parts, 1)}
	case tag == ActionFitAssessment:
		out.Action = AssessFit{}
	default:
		// SHOW_VIDEO and SHOW_PDF need an argument; FIT_ASSESSMENT takes none.
		if d.Strict {
			return out, fmt.Errorf("%w: %q", ErrUnknownAction, tag)
		}
		out.Ignored = append(out.Ignored, tag)
	}
	return out, nil
}

// indexArg parses a library position. Anything unparsable maps to -1, which
// never resolves.
func indexArg(parts []string, i int) int {
	if i >= len(parts) {
		return -1
	}
	n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
	if err != nil {
		return -1
	}
	return n
}

// flexInt accepts a JSON number or a numeric string.
type flexInt int64

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		return nil
	}
	if unq, err := strconv.Unquote(s); err == nil {
		s = strings.TrimSpace(unq)
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		*f = flexInt(n)
		return nil
	}
	fl, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", string(b))
	}
	// float64(math.MaxInt64) rounds up to 2^63, so the upper bound is exclusive.
	if math.IsNaN(fl) || fl < math.MinInt64 || fl >= math.MaxInt64 {
		return fmt.Errorf("number out of range: %s", string(b))
	}
	*f = flexInt(int64(fl))
	return nil
}
