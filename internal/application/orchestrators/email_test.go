package orchestrators

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/HazemIbrahim256/sports-academy/internal/adapters/academyapi"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/coach"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
)

var pdfBytes = []byte("%PDF-1.4 report")

// --- Download Report tests ---

func TestExecuteDownloadReport(t *testing.T) {
	tests := []struct {
		name     string
		kind     ReportKind
		wantFile string
		wantCall string
	}{
		{"group", GroupReport, "group-3-report.pdf", "group-pdf 3"},
		{"player", PlayerReport, "player-3-report.pdf", "player-pdf 3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newMockAPI()
			api.groupPDF, api.playerPDF = pdfBytes, pdfBytes
			rep, err := ExecuteDownloadReport(context.Background(), ReportInput{Kind: tt.kind, ID: 3}, api)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rep.Filename != tt.wantFile {
				t.Errorf("expected %s, got %s", tt.wantFile, rep.Filename)
			}
			if string(rep.Content) != string(pdfBytes) {
				t.Error("expected collaborator bytes verbatim")
			}
			if api.calls[0] != tt.wantCall {
				t.Errorf("expected call %q, got %v", tt.wantCall, api.calls)
			}
		})
	}
}

func TestExecuteDownloadReport_Failures(t *testing.T) {
	api := newMockAPI()
	if _, err := ExecuteDownloadReport(context.Background(), ReportInput{Kind: "coach", ID: 1}, api); !errors.Is(err, ErrUnknownReport) {
		t.Errorf("expected ErrUnknownReport, got %v", err)
	}
	if _, err := ExecuteDownloadReport(context.Background(), ReportInput{Kind: GroupReport, ID: 1}, api); !errors.Is(err, ErrEmptyReport) {
		t.Errorf("expected ErrEmptyReport, got %v", err)
	}
	api.err = apiError(http.StatusNotFound, academyapi.KindNotFound, `{"detail":"Not found."}`)
	if _, err := ExecuteDownloadReport(context.Background(), ReportInput{Kind: GroupReport, ID: 1}, api); !academyapi.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

// --- Email Report tests ---

func viewerWithEmail(email string) identity.Identity {
	return identity.Identity{Kind: identity.Coach, User: coach.User{Username: "sam", FirstName: "Sam", Email: email}}
}

func TestExecuteEmailReport_SendsAttachment(t *testing.T) {
	api := newMockAPI()
	api.playerPDF = pdfBytes
	sender := &mockSender{}
	outcomes := mockOutcomes{}

	res, err := ExecuteEmailReport(context.Background(), EmailReportInput{
		ReportInput: ReportInput{Token: "t", Kind: PlayerReport, ID: 8},
		Viewer:      viewerWithEmail("sam@example.com"),
	}, EmailReportDeps{Reports: api, EmailSender: sender, Outcomes: outcomes, FromAddress: "Academy <noreply@example.com>", ReplyTo: "office@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.MessageID != "msg-1" {
		t.Errorf("unexpected message id %q", res.MessageID)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected exactly one email, got %d", len(sender.sent))
	}
	req := sender.sent[0]
	if len(req.To) != 1 || req.To[0] != "sam@example.com" {
		t.Errorf("unexpected recipients %v", req.To)
	}
	if req.ReplyTo != "office@example.com" || req.From != "Academy <noreply@example.com>" {
		t.Errorf("unexpected sender fields %q %q", req.From, req.ReplyTo)
	}
	if len(req.Attachments) != 1 || req.Attachments[0].Filename != "player-8-report.pdf" || req.Attachments[0].ContentType != "application/pdf" {
		t.Errorf("unexpected attachments %+v", req.Attachments)
	}
	if !strings.Contains(req.HTML, "Hello Sam") {
		t.Errorf("expected greeting in body, got %q", req.HTML)
	}
	if outcomes["sent"] != 1 {
		t.Errorf("expected sent outcome recorded, got %v", outcomes)
	}
}

func TestExecuteEmailReport_NoAddress(t *testing.T) {
	api := newMockAPI()
	_, err := ExecuteEmailReport(context.Background(), EmailReportInput{
		ReportInput: ReportInput{Kind: GroupReport, ID: 1},
		Viewer:      viewerWithEmail(" "),
	}, EmailReportDeps{Reports: api, EmailSender: &mockSender{}})
	if !errors.Is(err, ErrNoEmailAddress) {
		t.Fatalf("expected ErrNoEmailAddress, got %v", err)
	}
	if len(api.calls) != 0 {
		t.Errorf("expected no report fetch, got %v", api.calls)
	}
}

func TestExecuteEmailReport_SendFailureRecorded(t *testing.T) {
	api := newMockAPI()
	api.groupPDF = pdfBytes
	outcomes := mockOutcomes{}
	_, err := ExecuteEmailReport(context.Background(), EmailReportInput{
		ReportInput: ReportInput{Kind: GroupReport, ID: 1},
		Viewer:      viewerWithEmail("sam@example.com"),
	}, EmailReportDeps{Reports: api, EmailSender: &mockSender{err: errors.New("provider down")}, Outcomes: outcomes})
	if err == nil {
		t.Fatal("expected error")
	}
	if outcomes["failed"] != 1 || outcomes["sent"] != 0 {
		t.Errorf("unexpected outcomes %v", outcomes)
	}
}
