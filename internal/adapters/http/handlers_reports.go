package web

import (
	"net/http"
	"strconv"

	"github.com/HazemIbrahim256/sports-academy/internal/application/orchestrators"
)

func reportBack(kind orchestrators.ReportKind, id int) string {
	if kind == orchestrators.GroupReport {
		return groupPath(id)
	}
	return playerPath(id)
}

// handleDownloadReport streams the API-rendered PDF for GET /{groups|players}/{id}/report.pdf
func handleDownloadReport(kind orchestrators.ReportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			notFound(w, r)
			return
		}

		rep, err := orchestrators.ExecuteDownloadReport(r.Context(), orchestrators.ReportInput{
			Token: tokenOf(r),
			Kind:  kind,
			ID:    id,
		}, api)
		if err != nil {
			pageError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="`+rep.Filename+`"`)
		w.Header().Set("Content-Length", strconv.Itoa(len(rep.Content)))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(rep.Content)
	}
}

// handleEmailReport mails the PDF to the signed-in user for POST /{groups|players}/{id}/report/email
func handleEmailReport(kind orchestrators.ReportKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			notFound(w, r)
			return
		}
		if err := r.ParseForm(); err != nil {
			badRequest(w, r, "Invalid form submission")
			return
		}

		viewer := viewerOf(r)
		back := backTo(r, reportBack(kind, id))
		res, err := orchestrators.ExecuteEmailReport(r.Context(), orchestrators.EmailReportInput{
			ReportInput: orchestrators.ReportInput{Token: tokenOf(r), Kind: kind, ID: id},
			Viewer:      viewer,
		}, orchestrators.EmailReportDeps{
			Reports:     api,
			EmailSender: emailSender,
			Outcomes:    appMetrics,
			FromAddress: emailFromAddress,
			ReplyTo:     emailReplyTo,
		})
		if err != nil {
			actionError(w, r, back, err)
			return
		}
		actionDone(w, r, back, "Report sent to "+viewer.User.Email+".", res)
	}
}
