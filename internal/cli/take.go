package cli

import (
	"context"
	"errors"
	"maturitymap/internal/cache"
	"maturitymap/internal/catalog"
	"maturitymap/internal/config"
	"maturitymap/internal/logging"
	"maturitymap/internal/model"
	"maturitymap/internal/navigator"
	"maturitymap/internal/repository"
	"maturitymap/internal/service"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
)

// terminalClientID identifies terminal runs in the history store
const terminalClientID = "terminal"

// NewTakeCommand creates the 'maturitymap take' command
func NewTakeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "take",
		Short: "Answer the assessment in the terminal",
		Long: `Take the AI maturity assessment interactively. Your latest result is kept
in the data directory so the next run can show how your score changed, and
every completed assessment is added to the local history.

Requires GEMINI_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: runTake,
	}

	cmd.Flags().Bool("demo", false, "log in with the demo organization")
	cmd.Flags().String("data-dir", "", "directory for the previous result and history (default ~/.maturitymap)")

	return cmd
}

func runTake(cmd *cobra.Command, _ []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if !cfg.AI.IsEnabled() {
		return errors.New("no Gemini API key configured, set GEMINI_API_KEY")
	}

	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		return err
	}
	store, err := cache.NewFileSlotStore(filepath.Join(dataDir, "slots"))
	if err != nil {
		return err
	}
	history, err := repository.NewSQLiteAssessmentRepo(historyPath(dataDir))
	if err != nil {
		return err
	}
	defer history.Close()

	// the terminal is the UI, so only warnings reach stderr
	logger := logging.New(cmd.ErrOrStderr(), "warn", cfg.Log.Format)
	client := service.NewAssessmentClient(cfg.AI, logger, nil)
	demo, _ := cmd.Flags().GetBool("demo")

	runner := newTakeRunner(cmd.InOrStdin(), cmd.OutOrStdout(), takeDeps{
		Assessor:        client,
		Chatter:         client,
		Store:           store,
		History:         history,
		Chat:            cfg.Chat,
		LoadingInterval: cfg.Survey.LoadingInterval,
		Demo:            demo,
	})
	return runner.Run(cmd.Context())
}

// takeDeps are the collaborators of a terminal run
type takeDeps struct {
	Assessor        navigator.Assessor
	Chatter         service.Chatter
	Store           cache.SlotStore
	History         repository.AssessmentRepo
	Chat            config.ChatConfig
	LoadingInterval time.Duration
	Demo            bool
}

func newNavigator(ctx context.Context, deps takeDeps, notifier navigator.Notifier) *navigator.Navigator {
	return navigator.New(ctx, navigator.Config{
		ClientID:        terminalClientID,
		Questions:       catalog.Questions(),
		Assessor:        deps.Assessor,
		Cache:           cache.NewResultCache(deps.Store, cache.DefaultSlot, nil),
		Notifier:        notifier,
		OnResult:        archiveTo(deps.History),
		LoadingInterval: deps.LoadingInterval,
	})
}

func archiveTo(history repository.AssessmentRepo) navigator.ResultHook {
	if history == nil {
		return nil
	}
	return func(ctx context.Context, org model.OrganizationContext, answers model.AnswerSet, result *model.AssessmentResult) {
		// history is best effort; the result is already on screen and cached
		_ = history.Save(ctx, service.NewAssessmentRecord(terminalClientID, org, answers, result, time.Now()))
	}
}
