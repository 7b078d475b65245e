package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/prompt"
	"maturitymap/internal/service"
	"maturitymap/internal/survey"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"
)

var errInputClosed = errors.New("input closed")

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	dimColor     = color.New(color.Faint)
	errorColor   = color.New(color.FgRed)
	warnColor    = color.New(color.FgYellow)
	successColor = color.New(color.FgGreen)
	loadingColor = color.New(color.FgCyan)
)

// takeRunner drives one navigator from a line-oriented terminal
type takeRunner struct {
	in   *bufio.Scanner
	out  io.Writer
	deps takeDeps

	nav     *navigator.Navigator
	reports *service.ReportService
	chat    *service.ChatService
}

func newTakeRunner(in io.Reader, out io.Writer, deps takeDeps) *takeRunner {
	return &takeRunner{
		in:      bufio.NewScanner(in),
		out:     out,
		deps:    deps,
		reports: service.NewReportService(),
		chat:    service.NewChatService(deps.Chatter, deps.Chat, nil, nil),
	}
}

// terminalNotifier prints loading progress while an assessment runs
type terminalNotifier struct {
	mu  sync.Mutex
	out io.Writer
}

func (n *terminalNotifier) Notify(_ string, event string, payload any) {
	if event != navigator.EventLoadingStatus {
		return
	}
	status, ok := payload.(navigator.LoadingPayload)
	if !ok {
		return
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	loadingColor.Fprintf(n.out, "  %s\n", status.Message)
}

// Run loops login, survey, results and chat until the user stops or input ends
func (r *takeRunner) Run(ctx context.Context) error {
	r.nav = newNavigator(ctx, r.deps, &terminalNotifier{out: r.out})
	defer r.nav.Close()

	err := r.loop(ctx)
	if errors.Is(err, errInputClosed) {
		fmt.Fprintln(r.out)
		return nil
	}
	return err
}

func (r *takeRunner) loop(ctx context.Context) error {
	titleColor.Fprintln(r.out, "MaturityMap: Healthcare AI Maturity Assessment")
	for {
		if err := r.login(); err != nil {
			return err
		}
		if err := r.survey(ctx); err != nil {
			return err
		}

		switch r.nav.Page() {
		case navigator.PageResults:
			org, current, previous, err := r.nav.Results()
			if err != nil {
				return err
			}
			renderReport(r.out, r.reports.Build(org, current, previous))
			if err := r.chatLoop(ctx, current); err != nil {
				return err
			}
		case navigator.PageError:
			errorColor.Fprintf(r.out, "\n%s\n", r.nav.Snapshot().Error)
		}

		again, err := r.ask("\nTake the assessment again? [y/N] ")
		if err != nil {
			return err
		}
		if !isYes(again) {
			return nil
		}
		if err := r.nav.StartOver(); err != nil {
			return err
		}
	}
}

func (r *takeRunner) ask(label string) (string, error) {
	fmt.Fprint(r.out, label)
	if !r.in.Scan() {
		if err := r.in.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(r.in.Text()), nil
}

func (r *takeRunner) login() error {
	for {
		req := model.LoginRequest{Mode: model.LoginModeDemo}
		if !r.deps.Demo {
			var err error
			if req, err = r.loginForm(); err != nil {
				return err
			}
		}

		org, err := service.ResolveOrganization(req)
		if err != nil {
			errorColor.Fprintln(r.out, err.Error())
			continue
		}
		successColor.Fprintf(r.out, "Welcome, %s (%s)\n", org.Organization, org.OrgType)
		return r.nav.Login(org)
	}
}

func (r *takeRunner) loginForm() (model.LoginRequest, error) {
	email, err := r.ask("Email: ")
	if err != nil {
		return model.LoginRequest{}, err
	}
	password, err := r.ask("Password: ")
	if err != nil {
		return model.LoginRequest{}, err
	}
	organization, err := r.ask("Organization (blank to use your email domain): ")
	if err != nil {
		return model.LoginRequest{}, err
	}

	types := model.OrganizationTypes()
	for i, t := range types {
		fmt.Fprintf(r.out, "  %d) %s\n", i+1, t)
	}
	choice, err := r.ask(fmt.Sprintf("Organization type [1-%d]: ", len(types)))
	if err != nil {
		return model.LoginRequest{}, err
	}
	var orgType model.OrganizationType
	if n, err := strconv.Atoi(choice); err == nil && n >= 1 && n <= len(types) {
		orgType = types[n-1]
	}

	req := model.LoginRequest{
		Mode:     model.LoginModeLogin,
		Email:    email,
		Password: password,
		OrgType:  orgType,
	}
	if organization != "" {
		req.Mode = model.LoginModeSignup
		req.Organization = organization
	}
	return req, nil
}

func (r *takeRunner) survey(ctx context.Context) error {
	for r.nav.Page() == navigator.PageSurvey {
		state := r.nav.Snapshot().Survey
		renderQuestion(r.out, state)

		line, err := r.ask("> ")
		if err != nil {
			return err
		}

		switch strings.ToLower(line) {
		case "b":
			r.nav.GoPrevious()
		case "n":
			if moved, _ := r.nav.GoNext(); !moved {
				warnColor.Fprintln(r.out, "Answer this question before moving on.")
			}
		case "s":
			if err := r.submit(ctx); err != nil {
				return err
			}
		default:
			n, err := strconv.Atoi(line)
			if err != nil || n < 1 || n > len(state.Question.Options) {
				warnColor.Fprintf(r.out, "Enter 1-%d, b (back), n (next) or s (submit).\n", len(state.Question.Options))
				continue
			}
			if err := r.nav.RecordAnswer(state.Question.ID, state.Question.Options[n-1]); err != nil {
				warnColor.Fprintln(r.out, err.Error())
				continue
			}
			if state.IsLast && r.nav.Snapshot().Survey.IsComplete {
				successColor.Fprintln(r.out, "All questions answered. Enter s to submit.")
			}
		}
	}
	return nil
}

func (r *takeRunner) submit(ctx context.Context) error {
	titleColor.Fprintln(r.out, "\nAnalyzing your responses...")
	err := r.nav.Submit(ctx)

	var verr *survey.ValidationError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &verr):
		warnColor.Fprintf(r.out, "Not ready to submit: %s\n", verr.Reason)
		return nil
	case r.nav.Page() == navigator.PageError:
		// the navigator already holds the message shown to the user
		return nil
	default:
		return err
	}
}

func (r *takeRunner) chatLoop(ctx context.Context, result *model.AssessmentResult) error {
	fmt.Fprintln(r.out)
	titleColor.Fprintln(r.out, "MaturityBot")
	fmt.Fprintln(r.out, prompt.ChatGreeting)
	for i, s := range prompt.ChatSuggestions {
		dimColor.Fprintf(r.out, "  %d) %s\n", i+1, s)
	}
	dimColor.Fprintln(r.out, "Ask a question, pick a suggestion, or press Enter to finish.")

	for {
		line, err := r.ask("You: ")
		if err != nil {
			return err
		}
		if line == "" || strings.EqualFold(line, "q") {
			return nil
		}
		if n, err := strconv.Atoi(line); err == nil && n >= 1 && n <= len(prompt.ChatSuggestions) {
			line = prompt.ChatSuggestions[n-1]
		}

		reply, err := r.chat.Ask(ctx, terminalClientID, result, line)
		switch {
		case errors.Is(err, service.ErrRateLimited):
			warnColor.Fprintln(r.out, "Too many questions at once, wait a moment and try again.")
		case err != nil:
			return err
		case reply.IsError:
			errorColor.Fprintf(r.out, "MaturityBot: %s\n", reply.Text)
		default:
			fmt.Fprintf(r.out, "MaturityBot: %s\n", reply.Text)
		}
	}
}

func isYes(s string) bool {
	switch strings.ToLower(s) {
	case "y", "yes":
		return true
	}
	return false
}
