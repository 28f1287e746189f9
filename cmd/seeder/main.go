package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"iter"
	"log/slog"
	"os"
	"time"

	"github.com/resonet/ideastream"
	"github.com/resonet/ideastream/core"
)

var ideas = []string{
	"Cities should publish their zoning maps as living documents anyone can annotate.",
	"A garden is a slow conversation between a person and a patch of ground.",
	"Most meetings are caches for decisions that were never written down.",
	"Libraries are the only public spaces left where nobody expects you to buy anything.",
	"Software rots not from use but from the assumptions around it shifting.",
	"A good trail map tells you where you will be tired, not just where you will be.",
	"Compost is the original recycling protocol, and it never needed a standards body.",
	"Street trees are infrastructure that appreciates instead of depreciating.",
	"The best documentation is written by the person who just stopped being confused.",
	"Bread rises on its own schedule; the baker only negotiates.",
	"Every neighborhood has an unofficial mayor and it is never the loudest person.",
	"Old train timetables are poems about a country's sense of time.",
	"A workshop is a room where mistakes are cheap on purpose.",
	"Rivers are the oldest shipping lanes and still the most honest ones.",
	"Notebooks outlast apps because paper has no deprecation policy.",
	"The commons survives wherever maintenance is more celebrated than founding.",
	"A lighthouse is a message that repeats itself forever without complaint.",
	"Hand tools teach patience; power tools teach scheduling.",
	"Maps lie gently so that they can tell the truth about what matters.",
	"The quietest archive in town is the hardware store's drawer of odd screws.",
	"Ferment anything long enough and it becomes either food or a lesson.",
	"Bridges are promises a city makes to both of its halves.",
	"A seed catalog is science fiction that mostly comes true.",
	"Public benches are load-bearing members of civic life.",
	"Weather vanes were the first push notifications.",
	"Every long-lived codebase contains a small museum of its authors' habits.",
	"Tide pools are databases that rewrite themselves twice a day.",
	"The best ideas arrive while carrying something heavy up the stairs.",
	"An orchard is a bet placed decades before the payout.",
	"Sidewalk chalk is the most honest form of urban planning feedback.",
}

var (
	seedFileName = flag.String("src", "", "file of seed data, one idea per line")
	dbPath       = flag.String("db", "./ideas_db", "path to BadgerDB database directory")
	author       = flag.String("author", "seeder", "author id for seeded ideas")
)

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// seedIdeas pushes each line through the coordinator as an idea event.
// Every third idea references the previous one so the seeded corpus has
// a visible network.
func seedIdeas(ctx context.Context, engine *ideastream.Engine, source iter.Seq[string]) error {
	n := 0
	prevId := ""

	for line := range source {
		if line == "" {
			continue
		}

		id := fmt.Sprintf("seed-%04d-%s", n, core.ContentDigest(line)[:8])

		var tags [][]string
		if n%3 == 2 && prevId != "" {
			tags = append(tags, []string{core.ReferenceTag, prevId})
		}

		event := &core.IdeaEvent{
			Id:        id,
			Author:    *author,
			CreatedAt: time.Now().Unix() - int64(len(ideas)-n),
			Kind:      1,
			Tags:      tags,
			Content:   line,
		}

		if err := engine.Coordinator().Ingest(ctx, event); err != nil {
			return err
		}

		prevId = id
		n++
	}

	slog.Info("seeding complete", "ideas", n)
	return nil
}

func main() {
	engine, err := ideastream.Open(*dbPath)
	if err != nil {
		panic(err)
	}
	defer engine.Close()

	var source iter.Seq[string]
	if seedFileName != nil && *seedFileName != "" {
		source, err = linesFromFile(*seedFileName)
		if err != nil {
			panic(err)
		}
	} else {
		source = linesFromSlice(ideas)
	}

	if err := seedIdeas(context.Background(), engine, source); err != nil {
		panic(err)
	}
}
