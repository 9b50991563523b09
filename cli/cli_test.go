package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harperreed/salesflow/library"
	"github.com/harperreed/salesflow/session"
)

// testEnv writes a config pointing at a temp database and a local library.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := "db_path: " + filepath.Join(dir, "crm.db") + "\n" +
		"agent:\n  pace: 0s\n" +
		"charm:\n  offline: true\n  dir: " + filepath.Join(dir, "library") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

// run executes the root command with fresh flag state.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	configFile, dbPathFlag, verbose, offline = "", "", false, false
	contactForm = session.ContactForm{}
	dealForm = session.DealForm{}
	videoInput = library.VideoInput{}
	videoTranscript, videoAnalyze = "", false
	pdfInput = library.PDFInput{}
	exportOutput, vizOutput, wipeConfirm = "", "", false
	require.NoError(t, crmListCmd.Flags().Set("stage", ""))
	require.NoError(t, crmListCmd.Flags().Set("limit", "10"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := Execute()
	return out.String(), err
}

func TestSetVersionInfo(t *testing.T) {
	origVersion, origCommit, origDate := appVersion, appCommit, appDate
	defer func() { appVersion, appCommit, appDate = origVersion, origCommit, origDate }()

	SetVersionInfo("1.2.3", "abc1234", "2026-02-13")
	assert.Equal(t, "1.2.3", appVersion)
	assert.Equal(t, "abc1234", appCommit)
	assert.Equal(t, "2026-02-13", appDate)

	out, err := run(t, testEnv(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "salesflow 1.2.3")
	assert.Contains(t, out, "commit: abc1234")
}

func TestExecute_UnknownCommand(t *testing.T) {
	_, err := run(t, testEnv(t), "nonexistent-command")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestExecute_MissingConfigFile(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"), "crm", "list")
	require.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}
	for _, want := range []string{"serve", "relay", "chat", "mcp", "crm", "library", "viz", "sync", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestCRMListSeedsFirstRun(t *testing.T) {
	cfgPath := testEnv(t)

	out, err := run(t, cfgPath, "crm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Johnson")
	assert.Contains(t, out, "Total: 3 contact(s)")

	out, err = run(t, cfgPath, "crm", "list", "deals")
	require.NoError(t, err)
	assert.Contains(t, out, "Enterprise Package")
	assert.Contains(t, out, "$50,000")
	assert.Contains(t, out, "Michael Chen")

	out, err = run(t, cfgPath, "crm", "list", "activity")
	require.NoError(t, err)
	assert.Contains(t, out, "Sarah Johnson was added as a customer")
	assert.NotContains(t, out, "<strong>")
}

func TestCRMListRejectsUnknownKind(t *testing.T) {
	_, err := run(t, testEnv(t), "crm", "list", "companies")
	require.Error(t, err)
}

var idPattern = regexp.MustCompile(`ID: (\d+)`)

func TestCRMAddContactAndDeal(t *testing.T) {
	cfgPath := testEnv(t)

	out, err := run(t, cfgPath, "crm", "add-contact",
		"--name", "Dana Scully", "--company", "FBI", "--email", "dana@fbi.gov")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Contact created: Dana Scully")
	assert.Contains(t, out, "Status: lead")

	m := idPattern.FindStringSubmatch(out)
	require.Len(t, m, 2)

	out, err = run(t, cfgPath, "crm", "add-deal",
		"--name", "X-Files Archive", "--contact", m[1], "--value", "12000")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Deal created: X-Files Archive")
	assert.Contains(t, out, "$12,000")
	assert.Contains(t, out, "Stage: prospecting")

	out, err = run(t, cfgPath, "crm", "list", "deals", "--stage", "prospecting")
	require.NoError(t, err)
	assert.Contains(t, out, "X-Files Archive")
	assert.Contains(t, out, "Dana Scully")
	assert.NotContains(t, out, "Enterprise Package")

	out, err = run(t, cfgPath, "crm", "list", "activity")
	require.NoError(t, err)
	assert.Contains(t, out, "Dana Scully was added as a lead")
}

func TestCRMAddContactValidation(t *testing.T) {
	_, err := run(t, testEnv(t), "crm", "add-contact", "--name", "No Email", "--company", "Nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestCRMMoveDeal(t *testing.T) {
	cfgPath := testEnv(t)

	out, err := run(t, cfgPath, "crm", "move-deal", "2", "won")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Moved Starter Plan to won")

	out, err = run(t, cfgPath, "crm", "list", "deals", "--stage", "won")
	require.NoError(t, err)
	assert.Contains(t, out, "Starter Plan")

	_, err = run(t, cfgPath, "crm", "move-deal", "99", "won")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	_, err = run(t, cfgPath, "crm", "move-deal", "2", "closed")
	require.Error(t, err)
}

func TestCRMResetStaysEmpty(t *testing.T) {
	cfgPath := testEnv(t)

	out, err := run(t, cfgPath, "crm", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Demo data cleared")

	out, err = run(t, cfgPath, "crm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No contacts found")

	out, err = run(t, cfgPath, "crm", "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Seeded 3 contacts and 2 deals")

	out, err = run(t, cfgPath, "crm", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Total: 3 contact(s)")
}

func TestVizDashboard(t *testing.T) {
	out, err := run(t, testEnv(t), "viz", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "SALESFLOW CRM DASHBOARD")
	assert.Contains(t, out, "3 contacts")
	assert.Contains(t, out, "$65,000")
}

func TestLibraryCommands(t *testing.T) {
	cfgPath := testEnv(t)

	out, err := run(t, cfgPath, "library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Library is empty")

	transcript := filepath.Join(t.TempDir(), "demo.txt")
	require.NoError(t, os.WriteFile(transcript, []byte("0:00 | Host\nWelcome to the demo\n\n1:30 | Host\nHere is the pipeline\n"), 0644))

	out, err = run(t, cfgPath, "library", "add-video",
		"--url", "https://youtu.be/abc123", "--title", "Product Tour", "--tags", "demo,pipeline", "--transcript", transcript)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Video added: Product Tour")
	assert.Contains(t, out, "Segments: 2")

	out, err = run(t, cfgPath, "library", "add-pdf",
		"--url", "https://example.com/case.pdf", "--title", "Acme Case Study", "--type", "case study")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Document added: Acme Case Study")

	_, err = run(t, cfgPath, "library", "add-pdf", "--url", "https://example.com/x.pdf")
	require.Error(t, err)

	out, err = run(t, cfgPath, "library", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Product Tour")
	assert.Contains(t, out, "demo, pipeline")
	assert.Contains(t, out, "Acme Case Study")

	out, err = run(t, cfgPath, "library", "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "1 video, 1 document, 0 intents")

	exportPath := filepath.Join(t.TempDir(), "export.json")
	_, err = run(t, cfgPath, "library", "export", "--output", exportPath)
	require.NoError(t, err)

	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	var bundle library.Bundle
	require.NoError(t, json.Unmarshal(data, &bundle))
	require.Len(t, bundle.Videos, 1)
	require.Len(t, bundle.PDFs, 1)

	out, err = run(t, cfgPath, "sync", "wipe", "--confirm")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Library wiped")

	out, err = run(t, cfgPath, "library", "import", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Library imported")

	out, err = run(t, cfgPath, "library", "intents")
	require.NoError(t, err)
	assert.Contains(t, out, "No intents yet")

	_, err = run(t, cfgPath, "library", "delete-video", "abc")
	require.Error(t, err)
}

func TestSyncWipeNeedsConfirm(t *testing.T) {
	out, err := run(t, testEnv(t), "sync", "wipe")
	require.NoError(t, err)
	assert.Contains(t, out, "salesflow sync wipe --confirm")
}
