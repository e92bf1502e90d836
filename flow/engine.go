package flow

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"qabot/core/logger"
	tghelpers "qabot/core/telegram/helpers"
	"qabot/core/telegram/keyboard"
	"qabot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

const recordKey = "flow_record"

// RenderFunc produces and sends the flow result. Feature-level failures
// (bad payload, unreachable host) are reported to the user and nil returned;
// a non-nil error means the send itself failed.
type RenderFunc func(c tele.Context, rec *Record) error

// Recorder counts completed conversations per flow.
type Recorder interface {
	Completed(ctx context.Context, flow string, userID int64)
}

// Controller is handed to OnDone hooks so a feature can steer the
// post-completion choice state.
type Controller struct {
	C   tele.Context
	Rec *Record

	eng *Engine
	def *Definition
}

// Restart begins the flow again with a fresh record.
func (ctl Controller) Restart() error {
	return ctl.eng.begin(ctl.def, ctl.C)
}

// Exit clears the conversation and shows the main menu.
func (ctl Controller) Exit() error {
	return ctl.eng.exit(ctl.C)
}

// StayDone re-shows the post-completion keyboard without restarting.
func (ctl Controller) StayDone() error {
	return ctl.eng.promptDone(ctl.def, ctl.C)
}

// Engine interprets flow definitions against the session manager.
type Engine struct {
	mgr   state.Manager
	menu  tele.HandlerFunc
	stats Recorder
	defs  map[string]*Definition
}

// New builds an engine. The menu handler is invoked whenever a user leaves
// a conversation; stats may be nil.
func New(mgr state.Manager, menu tele.HandlerFunc, stats Recorder) *Engine {
	return &Engine{
		mgr:   mgr,
		menu:  menu,
		stats: stats,
		defs:  make(map[string]*Definition),
	}
}

func stateFor(name string) state.State {
	return state.State("flow:" + name)
}

// Register wires a definition into the FSM dispatch table.
func (e *Engine) Register(def *Definition) error {
	if def == nil || def.Name == "" || len(def.Steps) == 0 || def.Render == nil {
		return fmt.Errorf("flow: incomplete definition")
	}
	if _, exists := e.defs[def.Name]; exists {
		return fmt.Errorf("flow: duplicate definition %q", def.Name)
	}
	e.defs[def.Name] = def
	state.RegisterHandler(stateFor(def.Name), e.handler(def))
	return nil
}

// StartHandler returns the command handler that opens the named flow.
func (e *Engine) StartHandler(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		def, ok := e.defs[name]
		if !ok {
			return fmt.Errorf("flow: unknown flow %q", name)
		}
		return e.begin(def, c)
	}
}

// InProgress reports whether the user has an open conversation.
func (e *Engine) InProgress(userID int64) bool {
	return e.mgr.InProgress(userID)
}

func (e *Engine) begin(def *Definition, c tele.Context) error {
	uid := c.Sender().ID
	e.mgr.Clear(uid)
	e.mgr.SetState(uid, stateFor(def.Name))

	rec := newRecord(def.Name)
	e.skipToNext(def, rec)
	if e.finished(def, rec) {
		return e.complete(def, rec, c)
	}
	e.save(uid, rec)

	logger.Flow.Debug("flow.start",
		slog.String("flow", def.Name),
		slog.Int64("user_id", uid),
	)
	return e.prompt(def, rec, c)
}

func (e *Engine) handler(def *Definition) tele.HandlerFunc {
	return func(c tele.Context) error {
		uid := c.Sender().ID
		// A panicking step must not leave a half-filled session behind.
		// The recover middleware still reports it.
		defer func() {
			if r := recover(); r != nil {
				e.mgr.Clear(uid)
				panic(r)
			}
		}()
		rec := e.load(uid)
		if rec == nil || rec.Flow != def.Name {
			// Session data lost or mismatched, fail closed.
			return e.exit(c)
		}

		text := normalizeLabel(c.Text())
		if text == ExitLabel {
			logger.Flow.Debug("flow.exit",
				slog.String("flow", def.Name),
				slog.Int64("user_id", uid),
			)
			return e.exit(c)
		}

		if rec.Done {
			return e.handleDone(def, rec, c, text)
		}
		return e.handleStep(def, rec, c, text)
	}
}

func (e *Engine) handleStep(def *Definition, rec *Record, c tele.Context, text string) error {
	steps := def.steps(rec)
	if rec.Index >= len(steps) {
		return e.exit(c)
	}
	step := steps[rec.Index]

	if step.AllowBack && text == BackLabel {
		rec.Branch = ""
		rec.Index = 0
		e.save(c.Sender().ID, rec)
		return e.prompt(def, rec, c)
	}

	if step.Skippable && strings.EqualFold(text, SkipLabel) {
		delete(rec.Fields, step.Field)
	} else {
		val, err := step.Rule(text)
		if err != nil {
			return e.reject(def, rec, c, step, err)
		}
		if step.Field != "" {
			rec.Fields[step.Field] = val
		}
		if len(step.Branch) > 0 {
			choice, _ := val.(string)
			if branch, ok := step.Branch[choice]; ok {
				rec.Branch = branch
				rec.Index = 0
				e.skipToNext(def, rec)
				if e.finished(def, rec) {
					return e.complete(def, rec, c)
				}
				e.save(c.Sender().ID, rec)
				return e.prompt(def, rec, c)
			}
		}
	}

	rec.Index++
	e.skipToNext(def, rec)
	if e.finished(def, rec) {
		return e.complete(def, rec, c)
	}
	e.save(c.Sender().ID, rec)
	return e.prompt(def, rec, c)
}

func (e *Engine) skipToNext(def *Definition, rec *Record) {
	steps := def.steps(rec)
	for rec.Index < len(steps) {
		if cond := steps[rec.Index].SkipIf; cond != nil && cond(rec) {
			rec.Index++
			continue
		}
		return
	}
}

func (e *Engine) finished(def *Definition, rec *Record) bool {
	return rec.Index >= len(def.steps(rec))
}

func (e *Engine) complete(def *Definition, rec *Record, c tele.Context) error {
	uid := c.Sender().ID
	rec.Done = true
	e.save(uid, rec)

	if err := def.Render(c, rec); err != nil {
		return err
	}

	if e.stats != nil {
		e.stats.Completed(tghelpers.BuildContext(c), def.Name, uid)
	}
	logger.Flow.Info("flow.complete",
		slog.String("flow", def.Name),
		slog.Int64("user_id", uid),
	)
	return e.promptDone(def, c)
}

func (e *Engine) handleDone(def *Definition, rec *Record, c tele.Context, text string) error {
	if text == RepeatLabel {
		return e.begin(def, c)
	}
	if def.OnDone != nil {
		ctl := Controller{C: c, Rec: rec, eng: e, def: def}
		handled, err := def.OnDone(ctl, text)
		if err != nil {
			return err
		}
		if handled {
			return nil
		}
	}
	return e.promptDone(def, c)
}

func (e *Engine) promptDone(def *Definition, c tele.Context) error {
	markup := keyboard.ReplyButtons(def.doneKeyboard()...)
	return tghelpers.SendHTML(c, "What would you like to do next?", markup)
}

func (e *Engine) prompt(def *Definition, rec *Record, c tele.Context) error {
	steps := def.steps(rec)
	step := steps[rec.Index]
	return tghelpers.SendHTML(c, step.Prompt, e.stepMarkup(step))
}

func (e *Engine) reject(def *Definition, rec *Record, c tele.Context, step Step, err error) error {
	var code string
	if verr, ok := err.(*ValidationError); ok {
		code = verr.Code
	}
	logger.Flow.Debug("flow.reject",
		slog.String("flow", def.Name),
		slog.String("field", step.Field),
		slog.String("code", code),
	)
	return tghelpers.SendHTML(c, "❌ "+err.Error(), e.stepMarkup(step))
}

func (e *Engine) stepMarkup(step Step) *tele.ReplyMarkup {
	rows := make([][]string, 0, len(step.Keyboard)+2)
	rows = append(rows, step.Keyboard...)
	if step.Skippable {
		rows = append(rows, []string{SkipLabel})
	}
	if step.AllowBack {
		rows = append(rows, []string{BackLabel, ExitLabel})
	} else {
		rows = append(rows, []string{ExitLabel})
	}
	return keyboard.ReplyButtons(rows...)
}

func (e *Engine) exit(c tele.Context) error {
	e.mgr.Clear(c.Sender().ID)
	if e.menu != nil {
		return e.menu(c)
	}
	return nil
}

func (e *Engine) save(uid int64, rec *Record) {
	e.mgr.SetTemp(uid, recordKey, rec)
}

func (e *Engine) load(uid int64) *Record {
	v, ok := e.mgr.GetTemp(uid, recordKey)
	if !ok {
		return nil
	}
	rec, _ := v.(*Record)
	return rec
}
