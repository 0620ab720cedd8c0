package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	emailAdapter "github.com/HazemIbrahim256/sports-academy/internal/adapters/email"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/group"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/identity"
	"github.com/HazemIbrahim256/sports-academy/internal/domain/player"
)

// ReportKind selects which PDF report is produced.
type ReportKind string

const (
	GroupReport  ReportKind = "group"
	PlayerReport ReportKind = "player"
)

// ReportSource renders PDF reports on the academy API.
type ReportSource interface {
	GroupReportPDF(ctx context.Context, token string, id int) ([]byte, error)
	PlayerReportPDF(ctx context.Context, token string, id int) ([]byte, error)
}

// EmailOutcomeRecorder counts delivered and failed report emails.
type EmailOutcomeRecorder interface {
	EmailSent(outcome string)
}

// Report is a downloaded PDF and the file name it is served under.
type Report struct {
	Filename string
	Content  []byte
}

// ReportInput identifies one report.
type ReportInput struct {
	Token string
	Kind  ReportKind
	ID    int
}

var (
	ErrUnknownReport  = errors.New("unknown report")
	ErrEmptyReport    = errors.New("the report came back empty")
	ErrNoEmailAddress = errors.New("add an email address to your profile first")
)

// --- Download Report ---

// ExecuteDownloadReport fetches the PDF bytes of a group or player report.
// POST: Content is non-empty and Filename is group-<id>-report.pdf or player-<id>-report.pdf
func ExecuteDownloadReport(ctx context.Context, input ReportInput, source ReportSource) (Report, error) {
	var (
		rep Report
		err error
	)
	switch input.Kind {
	case GroupReport:
		rep.Filename = group.ReportFilename(input.ID)
		rep.Content, err = source.GroupReportPDF(ctx, input.Token, input.ID)
	case PlayerReport:
		rep.Filename = player.ReportFilename(input.ID)
		rep.Content, err = source.PlayerReportPDF(ctx, input.Token, input.ID)
	default:
		return Report{}, ErrUnknownReport
	}
	if err != nil {
		return Report{}, fmt.Errorf("%s report %d: %w", input.Kind, input.ID, err)
	}
	if len(rep.Content) == 0 {
		return Report{}, ErrEmptyReport
	}
	return rep, nil
}

// --- Email Report ---

// EmailReportInput carries input for emailing a report to the viewer.
type EmailReportInput struct {
	ReportInput
	Viewer identity.Identity
}

// EmailReportDeps holds dependencies for EmailReport.
type EmailReportDeps struct {
	Reports     ReportSource
	EmailSender emailAdapter.Sender
	Outcomes    EmailOutcomeRecorder // optional
	FromAddress string
	ReplyTo     string
}

var reportBody = template.Must(template.New("report").Parse(
	`<p>Hello {{.Name}},</p><p>Your {{.Kind}} report is attached as <strong>{{.Filename}}</strong>.</p>`))

// ExecuteEmailReport fetches a report and mails it to the viewer as an attachment.
// PRE: Viewer is authenticated
// POST: exactly one email is sent to the viewer's address on success
func ExecuteEmailReport(ctx context.Context, input EmailReportInput, deps EmailReportDeps) (emailAdapter.SendResult, error) {
	to := strings.TrimSpace(input.Viewer.User.Email)
	if to == "" {
		return emailAdapter.SendResult{}, ErrNoEmailAddress
	}

	rep, err := ExecuteDownloadReport(ctx, input.ReportInput, deps.Reports)
	if err != nil {
		return emailAdapter.SendResult{}, err
	}

	var body strings.Builder
	if err := reportBody.Execute(&body, map[string]string{
		"Name":     input.Viewer.DisplayName(),
		"Kind":     string(input.Kind),
		"Filename": rep.Filename,
	}); err != nil {
		return emailAdapter.SendResult{}, fmt.Errorf("render report email: %w", err)
	}

	res, err := deps.EmailSender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{to},
		From:    deps.FromAddress,
		Subject: fmt.Sprintf("Academy %s report #%d", input.Kind, input.ID),
		HTML:    body.String(),
		ReplyTo: deps.ReplyTo,
		Attachments: []emailAdapter.Attachment{{
			Filename:    rep.Filename,
			ContentType: "application/pdf",
			Content:     rep.Content,
		}},
	})
	if err != nil {
		record(deps.Outcomes, "failed")
		return emailAdapter.SendResult{}, fmt.Errorf("send report email: %w", err)
	}
	record(deps.Outcomes, "sent")

	slog.Info("email_event", "event", "report_emailed", "kind", input.Kind, "id", input.ID, "message_id", res.MessageID)
	return res, nil
}

func record(r EmailOutcomeRecorder, outcome string) {
	if r != nil {
		r.EmailSent(outcome)
	}
}
