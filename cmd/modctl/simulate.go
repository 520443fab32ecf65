package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/classifier"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/models"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/moderation"
	"github.com/ahmetcoskunkizilkaya/sphere-moderation/internal/store/memory"
	"github.com/urfave/cli/v2"
)

var simulateCommand = &cli.Command{
	Name:      "simulate",
	Usage:     "replay a vote sequence against an in-memory store and print the outcome",
	ArgsUsage: "<remove|keep>...",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "min-votes", Value: 5},
		&cli.Float64Flag{Name: "removal-threshold", Value: 0.6},
		&cli.Float64Flag{Name: "ai-threshold", Value: 0.8},
		&cli.StringFlag{Name: "policy", Value: string(moderation.PolicySymmetric)},
		&cli.DurationFlag{Name: "voting-period", Value: 72 * time.Hour},
		&cli.StringFlag{Name: "text", Usage: "content text; enables the heuristic content check"},
		&cli.BoolFlag{Name: "expire", Usage: "let the voting period elapse after the last vote"},
	},
	Action: runSimulate,
}

type simulation struct {
	Thresholds moderation.Thresholds
	Text       string
	Votes      []models.VoteDecision
	Expire     bool
}

type simulationResult struct {
	Report  *models.Report       `json:"report"`
	Content models.ContentStatus `json:"content_status"`
	Steps   []simulationStep     `json:"steps"`
}

type simulationStep struct {
	Voter    string              `json:"voter"`
	Decision models.VoteDecision `json:"decision"`
	Status   models.ReportStatus `json:"status"`
	Error    string              `json:"error,omitempty"`
}

func runSimulate(cctx *cli.Context) error {
	sim := simulation{
		Thresholds: moderation.Thresholds{
			MinVotesRequired:      cctx.Int("min-votes"),
			RemovalThreshold:      cctx.Float64("removal-threshold"),
			AIConfidenceThreshold: cctx.Float64("ai-threshold"),
			VotingPeriod:          cctx.Duration("voting-period"),
			Policy:                moderation.Policy(cctx.String("policy")),
		},
		Text:   cctx.String("text"),
		Expire: cctx.Bool("expire"),
	}
	votes, err := parseDecisions(cctx.Args().Slice())
	if err != nil {
		return err
	}
	sim.Votes = votes

	result, err := sim.run(contextOrBackground(cctx.Context))
	if err != nil {
		return err
	}
	return printJSON(result)
}

func parseDecisions(args []string) ([]models.VoteDecision, error) {
	var out []models.VoteDecision
	for _, arg := range args {
		for _, part := range strings.Split(arg, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			d := models.VoteDecision(strings.ToLower(part))
			if !d.Valid() {
				return nil, fmt.Errorf("invalid decision %q: must be remove or keep", part)
			}
			out = append(out, d)
		}
	}
	return out, nil
}

type simClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *simClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *simClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func (s simulation) run(ctx context.Context) (*simulationResult, error) {
	const contentID = "sim-content"

	mem := memory.NewStore()
	mem.PutContent(models.Content{
		ID:       contentID,
		Type:     models.ContentPost,
		AuthorID: "sim-author",
		Text:     s.Text,
		Status:   models.ContentActive,
	})
	clock := &simClock{now: time.Now().UTC()}

	opts := moderation.Options{
		Reports:    mem,
		Contents:   mem,
		Thresholds: s.Thresholds,
		Features:   moderation.DefaultFeatures(),
		Clock:      clock,
	}
	if s.Text != "" {
		opts.Classifier = classifier.NewHeuristic()
	}
	engine, err := moderation.NewEngine(opts)
	if err != nil {
		return nil, err
	}

	report, err := engine.SubmitReport(ctx, moderation.SubmitReportInput{
		ContentID:   contentID,
		ContentType: models.ContentPost,
		ReporterID:  "sim-reporter",
		Reason:      models.ReasonOther,
	})
	if err != nil {
		return nil, err
	}
	engine.Wait()

	result := &simulationResult{}
	for i, d := range s.Votes {
		step := simulationStep{Voter: fmt.Sprintf("voter-%d", i+1), Decision: d}
		updated, err := engine.SubmitVote(ctx, report.ID, step.Voter, d)
		if err != nil {
			step.Error = err.Error()
		} else {
			step.Status = updated.Status
		}
		result.Steps = append(result.Steps, step)
	}

	if s.Expire {
		clock.advance(s.Thresholds.VotingPeriod + time.Second)
		if _, err := engine.ExpireStale(ctx); err != nil {
			return nil, err
		}
	}

	if result.Report, err = engine.GetReport(ctx, report.ID); err != nil {
		return nil, err
	}
	content, err := mem.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}
	result.Content = content.Status
	return result, nil
}
