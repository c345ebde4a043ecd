package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kailas-cloud/coursefind/internal/app"
	"github.com/kailas-cloud/coursefind/internal/domain"
	"github.com/kailas-cloud/coursefind/internal/domain/search/filter"
	"github.com/kailas-cloud/coursefind/internal/domain/search/request"
	"github.com/kailas-cloud/coursefind/internal/domain/search/result"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the catalog",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:    "difficulty",
				Aliases: []string{"d"},
				Usage:   "Keep courses at these levels (Beginner, Intermediate, Advanced)",
			},
			&cli.StringFlag{
				Name:  "price",
				Usage: "all, free or paid",
				Value: "all",
			},
			&cli.Float64Flag{
				Name:  "min-rating",
				Usage: "Minimum rating out of 5",
			},
			&cli.Float64Flag{
				Name:  "max-hours",
				Usage: "Maximum estimated duration in hours",
			},
			&cli.StringSliceFlag{
				Name:    "topic",
				Aliases: []string{"t"},
				Usage:   "Keep courses whose title contains any of these words",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of results (0: configured default)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON",
			},
		},
		Action: runSearch,
	}
}

func runSearch(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	spec, err := filterFromFlags(c)
	if err != nil {
		return err
	}
	req, err := request.New(query, spec, c.Int("limit"))
	if err != nil {
		return err
	}

	a, err := buildApp(c, app.Options{})
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Search.Search(c.Context, &req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	if c.Bool("json") {
		return writeResultsJSON(c.App.Writer, results)
	}
	writeResultsText(c.App.Writer, results)
	return nil
}

func filterFromFlags(c *cli.Context) (filter.Spec, error) {
	spec := filter.Spec{Topics: c.StringSlice("topic")}
	for _, d := range c.StringSlice("difficulty") {
		level := domain.ParseDifficulty(d)
		if level == domain.DifficultyUnspecified {
			return filter.Spec{}, fmt.Errorf("%w: unknown difficulty %q", domain.ErrInvalidQuery, d)
		}
		spec.Difficulties = append(spec.Difficulties, level)
	}

	switch strings.ToLower(c.String("price")) {
	case "all", "":
	case "free":
		spec.FreeOnly = true
	case "paid":
		spec.PaidOnly = true
	default:
		return filter.Spec{}, fmt.Errorf("%w: price must be all, free or paid", domain.ErrInvalidQuery)
	}

	if c.IsSet("min-rating") {
		v := c.Float64("min-rating")
		spec.MinRating = &v
	}
	if c.IsSet("max-hours") {
		v := c.Float64("max-hours")
		spec.MaxDurationHours = &v
	}
	return spec, nil
}

type resultJSON struct {
	Rank      int      `json:"rank"`
	Title     string   `json:"title"`
	URL       string   `json:"url"`
	Level     string   `json:"difficulty"`
	IsFree    bool     `json:"is_free"`
	Duration  string   `json:"estimated_time"`
	Rating    string   `json:"rating"`
	Score     float64  `json:"score"`
	RankScore float64  `json:"rank_score"`
	Cluster   *int     `json:"cluster,omitempty"`
	Keywords  []string `json:"keywords"`
}

func writeResultsJSON(w io.Writer, results []result.Result) error {
	out := make([]resultJSON, len(results))
	for i, r := range results {
		out[i] = resultJSON{
			Rank:      i + 1,
			Title:     r.Course.Title,
			URL:       r.Course.URL,
			Level:     r.Course.Difficulty.String(),
			IsFree:    r.Course.IsFree,
			Duration:  r.Course.EstimatedTime,
			Rating:    r.Course.Rating,
			Score:     r.Score,
			RankScore: r.RankScore,
			Cluster:   r.Cluster,
			Keywords:  r.Keywords,
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeResultsText(w io.Writer, results []result.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No courses found.")
		return
	}
	for i, r := range results {
		price := "paid"
		if r.Course.IsFree {
			price = "free"
		}
		cluster := ""
		if r.HasCluster() {
			cluster = fmt.Sprintf(" [cluster %d]", *r.Cluster)
		}
		fmt.Fprintf(w, "%2d. %s (%.3f)%s\n", i+1, r.Course.Title, r.RankScore, cluster)
		fmt.Fprintf(w, "    %s | %s | %s | %s\n",
			r.Course.Difficulty, price, orDash(r.Course.EstimatedTime), orDash(r.Course.Rating))
		if len(r.Keywords) > 0 {
			fmt.Fprintf(w, "    keywords: %s\n", strings.Join(r.Keywords, ", "))
		}
		if r.Course.URL != "" {
			fmt.Fprintf(w, "    %s\n", r.Course.URL)
		}
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func suggestCommand() *cli.Command {
	return &cli.Command{
		Name:      "suggest",
		Usage:     "Complete a partial word against course titles",
		ArgsUsage: "<partial>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of suggestions (0: configured default)",
			},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp(c, app.Options{})
			if err != nil {
				return err
			}
			defer a.Close()

			limit := c.Int("limit")
			if !c.IsSet("limit") {
				limit = a.Config.Search.SuggestLimit
			}
			for _, w := range a.Suggest.Suggest(c.Args().First(), limit) {
				fmt.Fprintln(c.App.Writer, w)
			}
			return nil
		},
	}
}

func warmCommand() *cli.Command {
	return &cli.Command{
		Name:  "warm",
		Usage: "Compute and persist the catalog embedding matrix",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Recompute even when a valid cached matrix exists",
			},
		},
		Action: func(c *cli.Context) error {
			a, err := buildApp(c, app.Options{Recompute: c.Bool("force")})
			if err != nil {
				return err
			}
			defer a.Close()

			fmt.Fprintf(c.App.Writer, "%s: %d x %d (%s, cache %s)\n",
				a.Cache.Key(a.Catalog), a.Matrix.Rows(), a.Matrix.Dims(), a.Model.ID(), a.Config.Cache.Driver)
			return nil
		},
	}
}

func buildApp(c *cli.Context, opts app.Options) (*app.App, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(c, cfg, false)
	if err != nil {
		return nil, err
	}
	a, err := app.Build(c.Context, cfg, logger, opts)
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return a, nil
}
