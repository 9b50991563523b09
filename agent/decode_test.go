// ABOUTME: Tests for the CRM and tour action decoders
// ABOUTME: Covers block extraction, narration stripping and strict mode
package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDecodeCRMPlainReply(t *testing.T) {
	reply, err := Decoder{}.DecodeCRM("  Hello! Nothing to do here.  ")
	require.NoError(t, err)
	assert.Empty(t, reply.Actions)
	assert.Equal(t, "Hello! Nothing to do here.", reply.Narration)
}

func TestDecodeCRMActionsInOrder(t *testing.T) {
	text := `I'll add Jane and open contacts.
<actions>
[
  {"action": "ADD_CONTACT", "params": {"name": "Jane", "company": "Foo", "email": "j@foo.com", "status": "lead"}},
  {"action": "SWITCH_TAB", "params": {"tab": "contacts"}},
  {"action": "MOVE_DEAL", "params": {"dealId": "2", "stage": "won"}},
  {"action": "ADD_DEAL", "params": {"name": "Pilot", "contactId": 1, "value": 1200.0}}
]
</actions>`

	reply, err := Decoder{Strict: true}.DecodeCRM(text)
	require.NoError(t, err)
	assert.Equal(t, "I'll add Jane and open contacts.", reply.Narration)
	require.Len(t, reply.Actions, 4)

	assert.Equal(t, AddContact{Name: "Jane", Company: "Foo", Email: "j@foo.com", Status: "lead"}, reply.Actions[0])
	assert.Equal(t, SwitchTab{Tab: "contacts"}, reply.Actions[1])
	assert.Equal(t, MoveDeal{DealID: 2, Stage: "won"}, reply.Actions[2])
	assert.Equal(t, AddDeal{Name: "Pilot", ContactID: 1, Value: 1200}, reply.Actions[3])
}

func TestDecodeCRMOnlyBlockIsEmptyNarration(t *testing.T) {
	reply, err := Decoder{}.DecodeCRM(`<actions>[{"action":"SWITCH_TAB","params":{"tab":"deals"}}]</actions>`)
	require.NoError(t, err)
	assert.Equal(t, "", reply.Narration)
	assert.Len(t, reply.Actions, 1)
}

func TestDecodeCRMMalformedJSON(t *testing.T) {
	reply, err := Decoder{}.DecodeCRM("Done!\n<actions>[{\"action\": \"ADD_CONTACT\",]</actions>")
	require.ErrorIs(t, err, ErrMalformedActions)
	assert.Empty(t, reply.Actions)
	assert.Equal(t, "Done!", reply.Narration)
}

func TestDecodeCRMUnknownActionLenient(t *testing.T) {
	text := `<actions>[{"action":"DELETE_EVERYTHING","params":{}},{"action":"SWITCH_TAB","params":{"tab":"deals"}}]</actions>`

	reply, err := Decoder{}.DecodeCRM(text)
	require.NoError(t, err)
	assert.Equal(t, []Action{SwitchTab{Tab: "deals"}}, reply.Actions)
	assert.Equal(t, []string{"DELETE_EVERYTHING"}, reply.Ignored)

	_, err = Decoder{Strict: true}.DecodeCRM(text)
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestDecodeCRMBadParamsLenient(t *testing.T) {
	text := `<actions>[{"action":"MOVE_DEAL","params":{"dealId":"abc","stage":"won"}}]</actions>`

	reply, err := Decoder{}.DecodeCRM(text)
	require.NoError(t, err)
	assert.Empty(t, reply.Actions)
	assert.Equal(t, []string{"MOVE_DEAL"}, reply.Ignored)

	_, err = Decoder{Strict: true}.DecodeCRM(text)
	require.Error(t, err)
}

func TestDecodeCRMOutOfRangeNumber(t *testing.T) {
	for _, value := range []string{`1e30`, `-1e30`, `"9.3e18"`, `"NaN"`, `"Inf"`} {
		text := `<actions>[{"action":"ADD_DEAL","params":{"name":"Huge","contactId":1,"value":` + value + `}}]</actions>`

		reply, err := Decoder{}.DecodeCRM(text)
		require.NoError(t, err, value)
		assert.Empty(t, reply.Actions, value)
		assert.Equal(t, []string{"ADD_DEAL"}, reply.Ignored, value)

		_, err = Decoder{Strict: true}.DecodeCRM(text)
		require.Error(t, err, value)
	}
}

func TestDecodeCRMLargeFloatInRange(t *testing.T) {
	reply, err := Decoder{Strict: true}.DecodeCRM(`<actions>[{"action":"ADD_DEAL","params":{"name":"Big","value":2.5e9}}]</actions>`)
	require.NoError(t, err)
	assert.Equal(t, []Action{AddDeal{Name: "Big", Value: 2500000000}}, reply.Actions)
}

func TestActionKinds(t *testing.T) {
	cases := map[string]Action{
		ActionSwitchTab:        SwitchTab{Tab: "deals"},
		ActionAddContact:       AddContact{Name: "Jane"},
		ActionAddDeal:          AddDeal{Name: "Pilot"},
		ActionMoveDeal:         MoveDeal{DealID: 1},
		ActionHighlightContact: HighlightContact{ContactID: 1},
		ActionHighlightDeal:    HighlightDeal{DealID: 1},
		ActionShowContact:      ShowContact{ContactID: 1},
		ActionShowVideo:        ShowVideo{VideoID: 0},
		ActionShowPDF:          ShowPDF{PDFID: 0},
		ActionFitAssessment:    AssessFit{},
	}
	for kind, a := range cases {
		assert.Equal(t, kind, a.Kind())
	}
	// A named record keeps its own name apart from the action kind.
	assert.Equal(t, "Jane", AddContact{Name: "Jane"}.Name)
}

func TestDecodeCRMMissingParams(t *testing.T) {
	reply, err := Decoder{Strict: true}.DecodeCRM(`<actions>[{"action":"SWITCH_TAB"}]</actions>`)
	require.NoError(t, err)
	assert.Equal(t, []Action{SwitchTab{}}, reply.Actions)
}

func TestDecodeCRMFirstBlockOnly(t *testing.T) {
	text := `One <actions>[{"action":"SWITCH_TAB","params":{"tab":"deals"}}]</actions> two <actions>[{"action":"SWITCH_TAB","params":{"tab":"contacts"}}]</actions>`

	reply, err := Decoder{}.DecodeCRM(text)
	require.NoError(t, err)
	assert.Equal(t, []Action{SwitchTab{Tab: "deals"}}, reply.Actions)
	assert.NotContains(t, reply.Narration, "<actions>")
}

func TestDecodeCRMNarrationNeverContainsBlock(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		before := rapid.StringMatching(`[A-Za-z ,.!]{0,40}`).Draw(t, "before")
		after := rapid.StringMatching(`[A-Za-z ,.!]{0,40}`).Draw(t, "after")
		body := rapid.StringMatching(`[\[\]{}":a-z0-9 ,]{0,30}`).Draw(t, "body")

		reply, _ := Decoder{}.DecodeCRM(before + "<actions>" + body + "</actions>" + after)
		if strings.Contains(reply.Narration, "<actions>") || strings.Contains(reply.Narration, "</actions>") {
			t.Fatalf("narration kept delimiters: %q", reply.Narration)
		}
		if reply.Narration != strings.TrimSpace(reply.Narration) {
			t.Fatalf("narration not trimmed: %q", reply.Narration)
		}
	})
}

func TestDecodeTourShowVideo(t *testing.T) {
	reply, err := Decoder{Strict: true}.DecodeTour("<action>SHOW_VIDEO:1:2:05</action> Watch this.")
	require.NoError(t, err)
	assert.Equal(t, ShowVideo{VideoID: 1, Timestamp: "2:05"}, reply.Action)
	assert.Equal(t, "Watch this.", reply.Narration)
}

func TestDecodeTourShowVideoDefaultTimestamp(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>SHOW_VIDEO:0</action>")
	require.NoError(t, err)
	assert.Equal(t, ShowVideo{VideoID: 0, Timestamp: "0:00"}, reply.Action)
	assert.Equal(t, "", reply.Narration)
}

func TestDecodeTourShowPDF(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("Here is the sheet <action>SHOW_PDF:3</action>")
	require.NoError(t, err)
	assert.Equal(t, ShowPDF{PDFID: 3}, reply.Action)
	assert.Equal(t, "Here is the sheet", reply.Narration)
}

func TestDecodeTourBadIDNeverResolves(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>SHOW_PDF:first</action>")
	require.NoError(t, err)
	assert.Equal(t, ShowPDF{PDFID: -1}, reply.Action)
}

func TestDecodeTourFitAssessment(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>FIT_ASSESSMENT</action>\nVERDICT: Good Fit")
	require.NoError(t, err)
	assert.Equal(t, AssessFit{}, reply.Action)
}

func TestDecodeTourFirstTagExecutesAllStripped(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>SHOW_PDF:0</action> and <action>SHOW_PDF:1</action> done")
	require.NoError(t, err)
	assert.Equal(t, ShowPDF{PDFID: 0}, reply.Action)
	assert.Equal(t, "and  done", reply.Narration)
}

func TestDecodeTourUnknown(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>DANCE</action> hi")
	require.NoError(t, err)
	assert.Nil(t, reply.Action)
	assert.Equal(t, []string{"DANCE"}, reply.Ignored)
	assert.Equal(t, "hi", reply.Narration)

	_, err = Decoder{Strict: true}.DecodeTour("<action>DANCE</action> hi")
	require.ErrorIs(t, err, ErrUnknownAction)
}

func TestDecodeTourBareTagsNeedArguments(t *testing.T) {
	for _, tag := range []string{"SHOW_VIDEO", "SHOW_PDF", "FIT_ASSESSMENT:now"} {
		reply, err := Decoder{}.DecodeTour("<action>" + tag + "</action> hi")
		require.NoError(t, err, tag)
		assert.Nil(t, reply.Action, tag)
		assert.Equal(t, []string{tag}, reply.Ignored, tag)
		assert.Equal(t, "hi", reply.Narration, tag)

		_, err = Decoder{Strict: true}.DecodeTour("<action>" + tag + "</action> hi")
		require.ErrorIs(t, err, ErrUnknownAction, tag)
	}
}

func TestDecodeTourLongTimestamp(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("<action>SHOW_VIDEO:0:1:05:30</action>")
	require.NoError(t, err)
	assert.Equal(t, ShowVideo{VideoID: 0, Timestamp: "1:05:30"}, reply.Action)
}

func TestDecodeTourNoTag(t *testing.T) {
	reply, err := Decoder{}.DecodeTour("  Just text  ")
	require.NoError(t, err)
	assert.Nil(t, reply.Action)
	assert.Equal(t, "Just text", reply.Narration)
}
