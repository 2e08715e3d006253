// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command.
//
// Command: ask [question]
// Short:   Ask a single question and print the answer
//
// Examples:
//   docchat ask "What was the interest rate in 2024?"
//   docchat ask --doc rates_2024 --mode table "Show the quarterly rates"
//   docchat ask --attach report.pdf "Summarize the new report"
//   docchat ask --attach report.pdf                  Upload only
//   docchat ask --sources --html out.html "Who signed the agreement?"
//   docchat ask --json "List the fees"
//
// Flags:
//   -d, --doc ID        Restrict the search to one document (id or name)
//   -m, --mode MODE     Answer mode: auto, text, table or both
//   -a, --attach FILE   Upload FILE before asking
//   -s, --sources       Print the citation list expanded
//   -t, --tables        Print every table expanded
//   --html FILE         Also write the exchange as an HTML document
//   --json              Output the answer as JSON

package cli

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/model"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

type askOptions struct {
	doc     string
	mode    string
	attach  string
	html    string
	sources bool
	tables  bool
	json    bool
}

func newAskCommand(st *state) *cobra.Command {
	opts := &askOptions{}
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question and print the answer",
		Example: `  docchat ask "What was the interest rate in 2024?"
  docchat ask --doc rates_2024 --mode table "Show the quarterly rates"
  docchat ask --attach report.pdf "Summarize the new report"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAsk(cmd.Context(), st, opts, strings.Join(args, " "), cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	f := cmd.Flags()
	f.StringVarP(&opts.doc, "doc", "d", "", "restrict the search to one document (id or name)")
	f.StringVarP(&opts.mode, "mode", "m", "", "answer mode: auto, text, table or both")
	f.StringVarP(&opts.attach, "attach", "a", "", "upload a file before asking")
	f.StringVar(&opts.html, "html", "", "also write the exchange as an HTML document")
	f.BoolVarP(&opts.sources, "sources", "s", false, "print the citation list expanded")
	f.BoolVarP(&opts.tables, "tables", "t", false, "print every table expanded")
	f.BoolVar(&opts.json, "json", false, "output the answer as JSON")
	return cmd
}

func runAsk(ctx context.Context, st *state, opts *askOptions, question string, stdout, stderr io.Writer) error {
	question = strings.TrimSpace(question)
	if question == "" && opts.attach == "" {
		return ErrMissingArgument("question", `docchat ask "What was the interest rate in 2024?"`)
	}

	doc := export.NewDocument()
	var pr *printer
	var sink transcript.RenderSink = doc
	if !opts.json {
		pr = newPrinter(stdout, st.cfg, printOptions{Sources: opts.sources, Tables: opts.tables})
		sink = transcript.Tee(pr, doc)
	}

	a, err := newApp(st.cfg, sink)
	if err != nil {
		return err
	}
	if err := prepareSession(ctx, a, opts); err != nil {
		return err
	}

	if pr != nil {
		pr.expectEcho()
	}
	log.Printf("ASK | mode=%s docs=%v attach=%t", a.session.Mode(), a.session.DocFilter(), opts.attach != "")
	res, err := a.machine.Submit(ctx, a.session, question)
	if err != nil {
		return err
	}

	data := AskData{
		Query:  question,
		Mode:   a.session.Mode(),
		DocIDs: a.session.DocFilter(),
		Upload: res.Upload,
	}
	if res.Answer != nil {
		data.Answer = res.Answer.Answer
		data.Intent = res.Answer.Intent
		data.Sources = res.Answer.Sources
		data.Tables = res.Answer.Tables
		if res.Answer.Mode != "" {
			data.Mode = res.Answer.Mode
		}
	}

	if opts.html != "" {
		path, err := export.WriteFile(opts.html, doc.Entries(), export.NewHTMLExporter(a.exportOpts), a.exportOpts)
		if err != nil {
			return NewCommandError("ask", "export", "could not write the HTML transcript", err)
		}
		data.Export = path
		if !opts.json {
			fmt.Fprintln(stderr, DimStyle.Render("Transcript written to "+path))
		}
	}

	failure := askFailure(res)
	if opts.json {
		if failure != nil {
			_ = NewJSONErrorResponse("ask", data, failure).Write(stdout)
			return &displayedError{err: failure}
		}
		return NewJSONResponse("ask", data).Write(stdout)
	}
	if failure != nil {
		// The transcript already shows the failure.
		return &displayedError{err: failure}
	}
	return nil
}

// prepareSession applies --mode, --doc and --attach.
func prepareSession(ctx context.Context, a *app, opts *askOptions) error {
	if opts.mode != "" {
		if err := a.session.SetMode(opts.mode); err != nil {
			return NewValidationError("mode", opts.mode, "unknown answer mode", strings.Join(service.Modes, ", "))
		}
	}
	if opts.doc != "" && !strings.EqualFold(opts.doc, "all") {
		if err := a.catalog.Refresh(ctx); err != nil {
			return WrapError(err, "load documents")
		}
		d, ok := a.catalog.Lookup(opts.doc)
		if !ok {
			return NewNotFoundError("document", opts.doc)
		}
		a.session.SetDocument(d.ID)
	}
	if opts.attach != "" {
		att, err := model.LoadAttachment(opts.attach)
		if err != nil {
			return NewCommandError("ask", "attach", "could not read "+opts.attach, err)
		}
		a.session.Attach(att)
	}
	return nil
}

// askFailure is the error a one-shot ask exits with: the query failure,
// else the upload failure.
func askFailure(res *submit.Result) error {
	if res.QueryErr != nil {
		return NewCommandError("ask", "query", "the document service did not answer", res.QueryErr)
	}
	if res.UploadErr != nil {
		return NewCommandError("ask", "upload", "the document was not ingested", res.UploadErr)
	}
	return nil
}
