package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/tsumogiri/riichi-client/internal/model"
	"github.com/tsumogiri/riichi-client/internal/presentation"
	"github.com/tsumogiri/riichi-client/internal/services/dispatch"
)

// promptMode tracks what kind of answer the dispatcher is waiting for.
type promptMode int

const (
	modeIdle promptMode = iota
	modeTile
	modeDecision
)

// tracker wraps the console presenter and remembers the current hand and
// pending prompt, so typed input can be resolved into tile ids and option
// indexes.
type tracker struct {
	presentation.Presenter

	mu      sync.Mutex
	hand    []model.Tile
	mode    promptMode
	options int
}

func newTracker(inner presentation.Presenter) *tracker {
	return &tracker{Presenter: inner}
}

func (t *tracker) RoundStarted(view presentation.RoundView) {
	t.mu.Lock()
	t.hand = append([]model.Tile(nil), view.Hand...)
	t.mode = modeIdle
	t.mu.Unlock()
	t.Presenter.RoundStarted(view)
}

func (t *tracker) HandChanged(hand []model.Tile, drawn *model.Tile) {
	t.mu.Lock()
	t.hand = append([]model.Tile(nil), hand...)
	t.mu.Unlock()
	t.Presenter.HandChanged(hand, drawn)
}

func (t *tracker) PromptDiscard(prompt presentation.DiscardPrompt) {
	t.mu.Lock()
	t.mode = modeTile
	t.mu.Unlock()
	t.Presenter.PromptDiscard(prompt)
}

func (t *tracker) PromptDecision(options []model.DecisionOption) {
	t.mu.Lock()
	t.mode = modeDecision
	t.options = len(options)
	t.mu.Unlock()
	t.Presenter.PromptDecision(options)
}

// pending returns the current prompt mode and a copy of the hand.
func (t *tracker) pending() (promptMode, []model.Tile) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mode, append([]model.Tile(nil), t.hand...)
}

// settle marks the prompt answered.
func (t *tracker) settle() {
	t.mu.Lock()
	t.mode = modeIdle
	t.mu.Unlock()
}

// inputLoop reads user commands from r until EOF or ctx is done. Numbers and
// tile notation answer the pending prompt; "watch <name>" switches the
// observed seat; "quit" leaves the session.
func inputLoop(
	ctx context.Context,
	r io.Reader,
	track *tracker,
	dispatcher *dispatch.Dispatcher,
	sender dispatch.Sender,
	cancel context.CancelFunc,
) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "quit", "exit":
			cancel()
			return
		case "watch":
			if len(fields) < 2 {
				fmt.Fprintln(os.Stderr, "usage: watch <username>")
				continue
			}
			if err := sender.Send(model.ChangeObservedAction{Username: fields[1]}); err != nil {
				fmt.Fprintf(os.Stderr, "watch failed: %v\n", err)
			}
		default:
			handleAnswer(track, dispatcher, line)
		}
	}
}

// handleAnswer resolves one typed token against the pending prompt.
func handleAnswer(track *tracker, dispatcher *dispatch.Dispatcher, token string) {
	mode, hand := track.pending()
	switch mode {
	case modeTile:
		tile, ok := resolveTile(token, hand)
		if !ok {
			fmt.Fprintf(os.Stderr, "no tile %q in hand\n", token)
			return
		}
		track.settle()
		dispatcher.SubmitTile(tile)
	case modeDecision:
		index, err := strconv.Atoi(token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "enter an option number\n")
			return
		}
		track.settle()
		dispatcher.SubmitChoice(index)
	default:
		fmt.Fprintf(os.Stderr, "nothing to answer\n")
	}
}

// resolveTile maps a token to a tile in the hand: a number is a 1-based hand
// position, anything else is tile notation like 5m or E.
func resolveTile(token string, hand []model.Tile) (model.Tile, bool) {
	if pos, err := strconv.Atoi(token); err == nil {
		if pos < 1 || pos > len(hand) {
			return 0, false
		}
		return hand[pos-1], true
	}
	for _, t := range hand {
		if strings.EqualFold(t.String(), token) {
			return t, true
		}
	}
	return 0, false
}
