// Package router dispatches parsed chat commands to the objective store
// and the AI formatter, and shapes the replies. The hosting integration
// calls HandleCommand once per event; all state lives in the store.
package router

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jeanpaul/goalkeeper/internal/format"
	"github.com/jeanpaul/goalkeeper/internal/provider"
	"github.com/jeanpaul/goalkeeper/internal/store"
)

// Command is one parsed chat invocation.
type Command struct {
	Name   string
	Args   string
	Author string
}

// Reply carries the outgoing text, pre-chunked to the transport limit.
// The integration sends each chunk as its own message.
type Reply struct {
	Chunks []string
}

// Options tune the chat-facing surface.
type Options struct {
	Prefix         string // command prefix shown in help text
	PageSize       int
	TransportLimit int
}

type Router struct {
	store *store.Store
	ai    provider.Provider
	opts  Options
	log   *zap.Logger
}

func New(st *store.Store, ai provider.Provider, opts Options, log *zap.Logger) *Router {
	if opts.Prefix == "" {
		opts.Prefix = "!"
	}
	if opts.PageSize <= 0 {
		opts.PageSize = store.DefaultPageSize
	}
	if opts.TransportLimit <= 0 {
		opts.TransportLimit = format.DefaultTransportLimit
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Router{store: st, ai: ai, opts: opts, log: log}
}

// HandleCommand runs one command to completion. It never panics out and
// never returns an empty reply: every failure below this layer becomes a
// user-visible message so the process keeps serving.
func (r *Router) HandleCommand(ctx context.Context, cmd Command) (reply Reply) {
	log := r.log.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("command", cmd.Name),
		zap.String("author", cmd.Author),
	)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("command panicked", zap.Any("panic", rec))
			reply = r.reply("💥 Something went wrong. Please try again or contact support.")
		}
	}()

	switch cmd.Name {
	case "set_objective":
		return r.setObjective(ctx, cmd, log)
	case "list":
		return r.list(cmd, log)
	case "test":
		return r.reply("I'm working! 🎉")
	default:
		log.Info("unknown command")
		return r.reply(r.usage())
	}
}

func (r *Router) setObjective(ctx context.Context, cmd Command, log *zap.Logger) Reply {
	text := strings.TrimSpace(cmd.Args)
	if text == "" {
		return r.reply(fmt.Sprintf("An objective needs some text. Usage: %sset_objective <text>", r.opts.Prefix))
	}

	// The completion happens before Append so the slow network call never
	// sits inside the store's write lock.
	formatted, aiErr := r.ai.Complete(ctx, provider.SMARTPrompt(text))
	if aiErr != nil {
		log.Warn("AI formatting unavailable, storing raw text", zap.Error(aiErr))
		formatted = text
	}

	obj, err := r.store.Append(cmd.Author, text, formatted)
	if err != nil {
		var verr *store.ValidationError
		if errors.As(err, &verr) {
			return r.reply("That objective text is not valid: " + verr.Reason)
		}
		log.Error("objective append failed", zap.Error(err))
		return r.reply("💥 Could not save your objective. Please try again or contact support.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Objective #%d recorded.\n%s", obj.ID, format.Bulletize(obj.FormattedText))
	if aiErr != nil {
		b.WriteString("\n\n(AI formatting was unavailable; stored your original wording.)")
	}
	log.Info("objective recorded", zap.Int("id", obj.ID), zap.Bool("ai_formatted", aiErr == nil))
	return r.reply(b.String())
}

func (r *Router) list(cmd Command, log *zap.Logger) Reply {
	page := 1
	if args := strings.TrimSpace(cmd.Args); args != "" {
		n, err := strconv.Atoi(args)
		if err != nil || n < 1 {
			return r.reply(fmt.Sprintf("Usage: %slist [page] — page must be a positive number", r.opts.Prefix))
		}
		page = n
	}

	objs := r.store.List(page, r.opts.PageSize)
	block := format.Paginate(objs, page, r.opts.PageSize, r.store.Count())
	log.Info("objectives listed", zap.Int("page", page), zap.Int("returned", len(objs)))
	return r.reply(block)
}

func (r *Router) reply(text string) Reply {
	return Reply{Chunks: format.Chunk(text, r.opts.TransportLimit)}
}

func (r *Router) usage() string {
	p := r.opts.Prefix
	return strings.Join([]string{
		"Commands:",
		fmt.Sprintf("  %sset_objective <text> — record a team objective (rewritten as a SMART goal)", p),
		fmt.Sprintf("  %slist [page] — browse recorded objectives", p),
		fmt.Sprintf("  %stest — check that the bot is alive", p),
	}, "\n")
}
