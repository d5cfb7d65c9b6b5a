// Command captest previews the caption stream for a transcript file
// without running the server: it loads a provider transcript JSON,
// rebases it onto the given clip window, and prints what a player
// would display at each tick.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/droth0951/audio2-sub001/internal/captions"
	"github.com/droth0951/audio2-sub001/internal/transcript"
)

func main() {
	clipStart := flag.Int64("clip-start-ms", 0, "Clip start in absolute episode time (ms)")
	clipEnd := flag.Int64("clip-end-ms", 0, "Clip end in absolute episode time (ms)")
	tick := flag.Int64("tick-ms", 250, "Playback tick cadence (ms)")
	chunks := flag.Bool("chunks", false, "Print word chunks instead of captions")
	flag.Parse()

	if flag.NArg() < 1 {
		log.Fatal("Usage: captest [flags] <transcript.json>")
	}

	path := flag.Arg(0)
	data, err := os.ReadFile(path) //#nosec G304 -- CLI input path
	if err != nil {
		log.Fatalf("Failed to read transcript: %v", err)
	}

	t := transcript.Parse(data)
	fmt.Printf("Transcript: %s (%d words, %d utterances)\n", path, len(t.Words), len(t.Utterances))

	window := transcript.ClipWindow{StartMs: *clipStart, EndMs: *clipEnd}
	engine := captions.NewEngine(captions.Options{})
	if err := engine.SetTranscript(t, window); err != nil {
		log.Fatalf("Failed to load transcript: %v", err)
	}
	fmt.Printf("Clip window: %d - %d ms (%d ms)\n\n", window.StartMs, window.EndMs, window.DurationMs())

	if *chunks {
		printChunks(engine, window.DurationMs(), *tick)
		return
	}
	printCaptions(engine, window.DurationMs(), *tick)
}

// printCaptions walks the clip and prints each caption change.
func printCaptions(engine *captions.Engine, durationMs, tickMs int64) {
	var last captions.Caption
	for at := int64(0); at <= durationMs; at += tickMs {
		c := engine.Select(at)
		if c == last {
			continue
		}
		last = c

		if !c.Active {
			fmt.Printf("%8dms  (silence)\n", at)
			continue
		}
		speaker := c.Speaker
		if speaker == "" {
			speaker = "?"
		}
		fmt.Printf("%8dms  [%s] %s\n", at, speaker, c.Text)
	}
}

// printChunks walks the clip and prints each chunk change, marking the
// highlighted word.
func printChunks(engine *captions.Engine, durationMs, tickMs int64) {
	for at := int64(0); at <= durationMs; at += tickMs {
		c := engine.BuildChunk(at)
		if !c.Changed {
			continue
		}
		if c.Text == "" {
			fmt.Printf("%8dms  (silence)\n", at)
			continue
		}
		fmt.Printf("%8dms  %s", at, c.Text)
		if c.HighlightedWord != "" {
			fmt.Printf("  <%s>", c.HighlightedWord)
		}
		fmt.Println()
	}
}
