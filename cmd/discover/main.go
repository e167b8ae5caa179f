package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"course-discovery/internal/config"
	"course-discovery/internal/courses"
	"course-discovery/internal/domain"
	"course-discovery/internal/providers"
	"course-discovery/internal/providers/udemy"
	"course-discovery/internal/providers/youtube"
)

func main() {
	var (
		op        = flag.String("op", "search", "operation: search | trending | free | personalized")
		query     = flag.String("q", "", "free-text query")
		category  = flag.String("category", "", "category filter (e.g. web-development)")
		platform  = flag.String("platform", "", "restrict to one provider (youtube | udemy)")
		level     = flag.String("level", "", "level filter (beginner | intermediate | advanced | unknown)")
		price     = flag.String("price", "", "price filter (free | paid)")
		skills    = flag.String("skills", "", "comma-separated skills for -op personalized")
		interests = flag.String("interests", "", "comma-separated interests for -op personalized")
		limit     = flag.Int("limit", 10, "max courses to print")
	)
	flag.Parse()

	start := time.Now()
	err := run(*op, *query, *category, *platform, *level, *price, *skills, *interests, *limit)
	fmt.Fprintf(os.Stderr, "finished in %s\n", time.Since(start))
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(op, query, category, platform, level, price, skills, interests string, limit int) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)

	var ps []providers.Provider
	if cfg.HasYouTube() {
		yt := youtube.New(cfg.YouTubeBaseURL, cfg.YouTubeAPIKey, cfg.RequestSpacing)
		ps = append(ps, &youtube.Provider{C: yt})
	}
	if cfg.HasUdemy() {
		ud := udemy.New(cfg.UdemyBaseURL, cfg.UdemyClientID, cfg.UdemyClientSecret, cfg.RequestSpacing)
		ps = append(ps, &udemy.Provider{C: ud})
	}

	svc := courses.New(ps, logger, courses.Options{
		FetchTimeout: cfg.FetchTimeout,
		MaxResults:   cfg.MaxResults,
		CacheTTL:     cfg.CacheTTL,
		CacheSize:    cfg.CacheSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var out []domain.Course
	switch op {
	case "search":
		out, err = svc.Search(ctx, courses.SearchParams{
			Query:    query,
			Category: category,
			Platform: platform,
			Level:    domain.Level(level),
			Price:    courses.PriceFilter(price),
		})
	case "trending":
		out, err = svc.Trending(ctx, category)
	case "free":
		out, err = svc.Free(ctx, query)
	case "personalized":
		out, err = svc.Recommendations(ctx, domain.Profile{
			Skills:          splitCSV(skills),
			Interests:       splitCSV(interests),
			ExperienceLevel: domain.Level(level),
		})
	default:
		return fmt.Errorf("unknown op %q", op)
	}
	if err != nil {
		return err
	}

	fmt.Printf("%d courses\n", len(out))
	for i, c := range out {
		if i == limit {
			break
		}
		rating := "-"
		if c.Rating != nil {
			rating = fmt.Sprintf("%.1f", *c.Rating)
		}
		priceLabel := fmt.Sprintf("$%.2f", c.Price)
		if c.IsFree() {
			priceLabel = "free"
		}
		fmt.Printf("%2d) [%s] %s | %s | %s | rating %s | %s\n",
			i+1, c.Provider, c.Title, c.Category, priceLabel, rating, c.URL)
	}
	return nil
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
