// Fridge Critic - live voice conversation with a judgmental AI critic.
// Speaks over the Gemini Live API; optional web monitor for transcript
// and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/vishalgiri25/fridge-critic/internal/config"
	"github.com/vishalgiri25/fridge-critic/internal/log"
	"github.com/vishalgiri25/fridge-critic/pkg/audioio"
	"github.com/vishalgiri25/fridge-critic/pkg/capture"
	"github.com/vishalgiri25/fridge-critic/pkg/debug"
	"github.com/vishalgiri25/fridge-critic/pkg/persona"
	"github.com/vishalgiri25/fridge-critic/pkg/playback"
	"github.com/vishalgiri25/fridge-critic/pkg/session"
	"github.com/vishalgiri25/fridge-critic/pkg/transcript"
	"github.com/vishalgiri25/fridge-critic/pkg/transport"
	"github.com/vishalgiri25/fridge-critic/pkg/web"
)

func main() {
	godotenv.Load()

	personaFlag := flag.String("persona", string(persona.WittyPal), "Critic persona: witty-pal, savage-mom, gym-trainer, friendly-chef, sarcastic-cousin")
	languageFlag := flag.String("language", string(persona.English), "Response language: english, hindi, punjabi")
	modelFlag := flag.String("model", "", "Gemini Live model override")
	voiceFlag := flag.String("voice", "", "Prebuilt voice name")
	itemsFlag := flag.String("items", "", "Comma-separated fridge contents for the critic to roast")
	scoreFlag := flag.Int("score", 0, "Junk-food sinner score 1-10 (requires -items)")
	webFlag := flag.Bool("web", false, "Serve the live monitor on WEB_PORT")
	backendFlag := flag.String("audio", string(audioio.BackendAuto), "Audio backend: auto, portaudio, mock")
	deviceFlag := flag.String("device", "", "Audio device name substring (default devices when empty)")
	debugFlag := flag.Bool("debug", false, "Enable verbose debug logging")
	wireFlag := flag.Bool("debug-wire", false, "Log every transport message")
	flag.Parse()

	debug.Enabled = *debugFlag
	debug.Wire = *wireFlag
	if *debugFlag {
		log.Init("debug")
	} else {
		log.Init("info")
	}

	p := persona.Persona(*personaFlag)
	if !p.Valid() {
		fmt.Fprintf(os.Stderr, "❌ Unknown persona %q\n", *personaFlag)
		os.Exit(1)
	}
	l := persona.Language(*languageFlag)
	if !l.Valid() {
		fmt.Fprintf(os.Stderr, "❌ Unknown language %q\n", *languageFlag)
		os.Exit(1)
	}

	var analysis *persona.Analysis
	if *itemsFlag != "" {
		var items []string
		for _, item := range strings.Split(*itemsFlag, ",") {
			if item = strings.TrimSpace(item); item != "" {
				items = append(items, item)
			}
		}
		analysis = &persona.Analysis{SinnerScore: *scoreFlag, Items: items}
	}

	apiKey := config.GoogleAPIKey()
	model := *modelFlag
	if model == "" {
		model = config.Model()
	}

	fmt.Println("🧊 Fridge Critic")
	fmt.Printf("   Persona:  %s\n", p)
	fmt.Printf("   Language: %s\n", l)

	source, err := audioio.NewSource(audioio.Config{
		Backend:    audioio.Backend(*backendFlag),
		SampleRate: capture.DefaultRate,
		Device:     *deviceFlag,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Microphone: %v\n", err)
		os.Exit(1)
	}

	output, err := audioio.NewOutput(audioio.Config{
		Backend:    audioio.Backend(*backendFlag),
		SampleRate: playback.DefaultRate,
		Device:     *deviceFlag,
	})
	if err != nil {
		source.Close()
		fmt.Fprintf(os.Stderr, "❌ Speaker: %v\n", err)
		os.Exit(1)
	}

	sess, err := session.New(session.Config{
		Persona:  p,
		Language: l,
		Analysis: analysis,
	}, session.Deps{
		Source: source,
		Output: output,
		Dial: func(ctx context.Context, instructions string) (transport.Transport, error) {
			return transport.DialGemini(ctx, transport.GeminiConfig{
				APIKey:            apiKey,
				Model:             model,
				Voice:             *voiceFlag,
				SystemInstruction: instructions,
			})
		},
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Session: %v\n", err)
		os.Exit(1)
	}

	var monitor *web.Server
	if *webFlag {
		monitor = web.NewServer(config.WebPort(), sess)
		monitor.Attach()
		monitor.StartAsync()
		fmt.Printf("🌐 Monitor: http://localhost:%s\n", config.WebPort())
	}

	// Print the user's side of the conversation as it happens. This
	// replaces the monitor's notify hook, so keep it in the chain.
	var lastPrinted string
	sess.Transcript().SetNotify(func(entries []transcript.Entry) {
		if monitor != nil {
			monitor.NotifyTranscript(entries)
		}
		if len(entries) == 0 {
			return
		}
		last := entries[len(entries)-1]
		if last.Sender == transcript.SenderUser && last.ID != lastPrinted {
			fmt.Printf("🗣️  You: %s\n", last.Text)
			lastPrinted = last.ID
		}
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Start failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("🎙️  Talk to the critic. Ctrl+C to hang up.")

	select {
	case <-ctx.Done():
		fmt.Println("\n👋 Hanging up...")
		sess.Stop()
	case <-sess.Done():
		if sess.State() == session.StateFailed {
			fmt.Fprintln(os.Stderr, "❌ Session failed")
			os.Exit(1)
		}
	}

	if monitor != nil {
		monitor.Shutdown()
	}

	fmt.Printf("📊 %s\n", sess.Metrics().Summary())

	// Final transcript dump.
	entries := sess.Transcript().Entries()
	if len(entries) > 0 {
		fmt.Println("\n📜 Transcript:")
		for _, e := range entries {
			who := "You   "
			if e.Sender == transcript.SenderAgent {
				who = "Critic"
			}
			fmt.Printf("   %s: %s\n", who, e.Text)
		}
	}
}
