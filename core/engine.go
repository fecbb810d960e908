package core

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/garoulab/garou-bot/logic"
	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/service"
)

// How long to wait before retrying a resolution that blew up.
const resolveRetryDelay = 30 * time.Second

// Engine owns every running game and drives the phase machine. A single
// mutex serializes event handlers and timer callbacks, so each game is only
// ever touched by one handler at a time.
type Engine struct {
	mu         sync.Mutex
	config     *model.Config
	registry   *Registry
	scheduler  *Scheduler
	messenger  service.Messenger
	ledger     service.Ledger
	gameLogger *service.GameLogger
	snapshots  *service.SnapshotStore
	rng        *rand.Rand
}

func NewEngine(config *model.Config, messenger service.Messenger, ledger service.Ledger,
	gameLogger *service.GameLogger, snapshots *service.SnapshotStore, rng *rand.Rand) *Engine {
	return &Engine{
		config:     config,
		registry:   NewRegistry(),
		scheduler:  NewScheduler(),
		messenger:  messenger,
		ledger:     ledger,
		gameLogger: gameLogger,
		snapshots:  snapshots,
		rng:        rng,
	}
}

// Resume restores every snapshotted game and re-arms its timers. Phases get
// a fresh full deadline; precise remaining time is not worth persisting for
// a chat game.
func (e *Engine) Resume() {
	if e.snapshots == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	for group, raw := range e.snapshots.LoadAll() {
		game, err := logic.RestoreGame(raw, e.config, e.messenger, e.ledger, e.rng)
		if err != nil {
			slog.Error("failed to restore game", "group", group, "error", err)
			e.snapshots.Delete(group)
			continue
		}
		if game.Phase == model.P_ENDED || game.Phase == model.P_ASSIGNING_ROLES {
			e.snapshots.Delete(group)
			continue
		}
		game.SetGameLogger(e.gameLogger)
		e.registry.Put(game)
		e.rearm(game)
		e.messenger.SendText(game.GroupID, "🔁 The game resumed after a short outage. Carry on!")
	}
}

func (e *Engine) rearm(game *logic.Game) {
	if game.PendingHunter != "" {
		e.armHunter(game)
		return
	}
	switch game.Phase {
	case model.P_WAITING_PLAYERS:
		e.armWaiting(game)
	case model.P_NIGHT:
		e.armNight(game)
	case model.P_DAY:
		e.armDay(game)
	}
}

// HandleEvent is the single entry point for inbound chat traffic.
func (e *Engine) HandleEvent(event model.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	text := strings.TrimSpace(event.Text)
	if text == "" {
		return
	}
	if !strings.HasPrefix(text, "!") {
		e.moderate(event)
		return
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return
	}
	command := strings.ToLower(fields[0])
	args := fields[1:]
	if event.IsGroup {
		e.handleGroupCommand(event, command, args)
	} else {
		e.handlePrivateCommand(event, command, args)
	}
}

// moderate penalizes a dead player speaking in the group while a game runs.
// Not an error, a scored side effect.
func (e *Engine) moderate(event model.Event) {
	if !event.IsGroup {
		return
	}
	game := e.registry.Get(event.Group)
	if game == nil || game.Phase == model.P_WAITING_PLAYERS {
		return
	}
	player := game.PlayerByID(event.Sender)
	if player == nil || !player.IsDead {
		return
	}
	game.PenalizeDeadSpeaker(player.ID)
	e.snapshot(game)
}

func (e *Engine) handleGroupCommand(event model.Event, command string, args []string) {
	switch command {
	case "werewolve", "startgame":
		e.createGame(event)
	case "play", "join":
		e.joinGame(event, args)
	case "start":
		game := e.registry.Get(event.Group)
		if game == nil {
			e.messenger.SendText(event.Group, "⚠️ No game here. Send *!werewolve* to open one.")
			return
		}
		e.startGame(game, false)
	case "vote":
		game := e.registry.Get(event.Group)
		if game == nil {
			return
		}
		err := game.CastVote(event.Sender, e.targetID(game, args, 0))
		e.replyErr(event.Group, err)
		if err == nil {
			e.snapshot(game)
		}
	case "players":
		if game := e.registry.Get(event.Group); game != nil {
			game.AnnounceRoster()
		}
	case "points":
		e.sendPoints(event.Group, event.Sender)
	case "top", "rank":
		e.sendScoreboard(event.Group)
	case "stopgame":
		e.stopGame(event)
	}
}

func (e *Engine) handlePrivateCommand(event model.Event, command string, args []string) {
	if command == "points" {
		e.sendPoints(event.Sender, event.Sender)
		return
	}
	group := e.registry.FindPlayerGroup(event.Sender)
	if group == "" {
		e.messenger.SendText(event.Sender, "⚠️ You are not in a running game.")
		return
	}
	game := e.registry.Get(group)
	actor := game.PlayerByID(event.Sender)
	if actor == nil {
		return
	}

	var err error
	switch command {
	case "kill", "eat":
		if actor.Role == model.R_SERIALKILLER {
			err = game.SerialKill(actor.ID, e.targetID(game, args, 0))
		} else {
			err = game.WolfKill(actor.ID, e.targetID(game, args, 0))
		}
	case "see":
		if actor.Role == model.R_MADMAN {
			err = game.MadmanFake(actor.ID, e.target(game, args, 0))
		} else {
			err = game.SeerInspect(actor.ID, e.targetID(game, args, 0))
		}
	case "save":
		err = game.DoctorSave(actor.ID, e.targetID(game, args, 0))
	case "heal":
		err = game.WitchHeal(actor.ID)
	case "poison":
		err = game.WitchPoison(actor.ID, e.targetID(game, args, 0))
	case "love":
		err = game.CupidPair(actor.ID, e.targetID(game, args, 0), e.targetID(game, args, 1))
	case "visit":
		if actor.Role == model.R_MADMAN {
			err = game.MadmanFake(actor.ID, e.target(game, args, 0))
		} else {
			err = game.ProstituteVisit(actor.ID, e.targetID(game, args, 0))
		}
	case "stopvote":
		if actor.Role == model.R_MADMAN {
			err = game.MadmanFake(actor.ID, nil)
		} else {
			err = game.MayorStopVote(actor.ID)
		}
	case "oil":
		err = game.PyroOil(actor.ID, e.targetID(game, args, 0))
	case "ignite":
		err = game.PyroIgnite(actor.ID)
	case "shoot":
		err = game.HunterShoot(actor.ID, e.targetID(game, args, 0))
		if err == nil {
			e.concludeHunter(game)
			return
		}
	default:
		return
	}

	e.replyErr(event.Sender, err)
	if err != nil {
		return
	}
	e.snapshot(game)
	if game.Phase == model.P_NIGHT && game.PendingHunter == "" && game.NightComplete() {
		e.resolveNight(game)
	}
}

// target resolves the 1-indexed roster shorthand. A missing or malformed
// number yields nil and the intake layer rejects it.
func (e *Engine) target(game *logic.Game, args []string, index int) *model.Player {
	if index >= len(args) {
		return nil
	}
	number, err := strconv.Atoi(args[index])
	if err != nil {
		return nil
	}
	return game.PlayerByNumber(number)
}

func (e *Engine) targetID(game *logic.Game, args []string, index int) string {
	if player := e.target(game, args, index); player != nil {
		return player.ID
	}
	return ""
}

func (e *Engine) replyErr(to string, err error) {
	if err == nil {
		return
	}
	if reject, ok := logic.IsReject(err); ok {
		e.messenger.SendText(to, reject.Reply)
		return
	}
	slog.Error("command failed", "error", err)
}

func (e *Engine) createGame(event model.Event) {
	if e.registry.Get(event.Group) != nil {
		e.messenger.SendText(event.Group, "⚠️ A game is already running in this group.")
		return
	}
	game := logic.NewGame(event.Group, e.config, e.messenger, e.ledger, e.rng)
	game.SetGameLogger(e.gameLogger)
	e.registry.Put(game)
	e.messenger.SendText(event.Group, fmt.Sprintf(
		"🐺 A werewolf hunt is forming!\nSend *!play <name>* to join.\nThe game starts in %d seconds, or sooner with *!start*.",
		e.config.Game.Waiting.DeadlineSecs))
	e.armWaiting(game)
	e.snapshot(game)
}

func (e *Engine) joinGame(event model.Event, args []string) {
	game := e.registry.Get(event.Group)
	if game == nil {
		e.messenger.SendText(event.Group, "⚠️ No game here. Send *!werewolve* to open one.")
		return
	}
	if other := e.registry.FindPlayerGroup(event.Sender); other != "" && other != event.Group {
		e.messenger.SendText(event.Group, "⚠️ You are already playing in another group. One table at a time!")
		return
	}
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		name = event.Name
	}
	if name == "" {
		name = event.Sender
	}
	err := game.Join(event.Sender, name)
	e.replyErr(event.Group, err)
	if err == nil {
		e.snapshot(game)
	}
}

// startGame runs role assignment. A failed manual start leaves the lobby
// open; a failed deadline start tears the game down.
func (e *Engine) startGame(game *logic.Game, atDeadline bool) {
	err := game.Start()
	switch {
	case err == nil:
		e.beginNight(game)
	case errors.Is(err, logic.ErrNotEnoughPlayers):
		if !atDeadline {
			e.messenger.SendText(game.GroupID, fmt.Sprintf("⚠️ Not enough players yet (minimum %d).", e.config.Game.MinPlayers))
			return
		}
		e.messenger.SendText(game.GroupID, fmt.Sprintf("😔 Not enough players (minimum %d). The hunt is called off.", e.config.Game.MinPlayers))
		e.destroyGame(game)
	case errors.Is(err, logic.ErrBadDistribution):
		e.messenger.SendText(game.GroupID, "⚠️ Role assignment went wrong. Open a new game to try again.")
		e.destroyGame(game)
	default:
		e.replyErr(game.GroupID, err)
	}
}

func (e *Engine) stopGame(event model.Event) {
	game := e.registry.Get(event.Group)
	if game == nil {
		return
	}
	if !event.IsAdmin && event.Sender != e.config.OperatorAddress {
		e.messenger.SendText(event.Group, "⚠️ Only a group admin can stop the game.")
		return
	}
	e.messenger.SendText(event.Group, "🛑 The game was stopped by an admin.")
	if e.gameLogger != nil {
		e.gameLogger.TrackEndGame(game.ID)
	}
	e.destroyGame(game)
}

// destroyGame invalidates the group's timers before dropping the game, so a
// deadline racing the teardown is a guaranteed no-op.
func (e *Engine) destroyGame(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	e.registry.Delete(game.GroupID)
	if e.snapshots != nil {
		e.snapshots.Delete(game.GroupID)
	}
	slog.Info("game destroyed", "id", game.ID, "group", game.GroupID)
}

func (e *Engine) snapshot(game *logic.Game) {
	if e.snapshots != nil {
		e.snapshots.Save(game.GroupID, game)
	}
}

// current reports whether the game is still the one registered for its
// group. Timer callbacks check it before touching anything.
func (e *Engine) current(game *logic.Game) bool {
	return e.registry.Get(game.GroupID) == game
}

// ---- phase starts and timers ----

func (e *Engine) armWaiting(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	deadline := e.config.Game.Waiting.Deadline()
	for _, offset := range e.config.Game.Waiting.Reminders() {
		remaining := int((deadline - offset).Seconds())
		e.scheduler.After(game.GroupID, offset, func() {
			e.remind(game, model.P_WAITING_PLAYERS, fmt.Sprintf(
				"⏳ %d seconds left to join! Send *!play <name>*.", remaining))
		})
	}
	e.scheduler.After(game.GroupID, deadline, func() { e.onWaitingDeadline(game) })
}

func (e *Engine) beginNight(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	game.BeginNight()
	e.armNight(game)
	e.snapshot(game)
}

func (e *Engine) armNight(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	deadline := e.config.Game.Night.Deadline()
	for _, offset := range e.config.Game.Night.Reminders() {
		remaining := int((deadline - offset).Seconds())
		e.scheduler.After(game.GroupID, offset, func() {
			e.remind(game, model.P_NIGHT, fmt.Sprintf("🌙 %d seconds of darkness left...", remaining))
		})
	}
	e.scheduler.After(game.GroupID, deadline, func() { e.onNightDeadline(game) })
}

func (e *Engine) beginDay(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	game.BeginDay()
	e.armDay(game)
	e.snapshot(game)
}

func (e *Engine) armDay(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	deadline := e.config.Game.Day.Deadline(game.AliveCount())
	for _, offset := range e.config.Game.Day.Reminders() {
		if offset >= deadline {
			continue
		}
		remaining := int((deadline - offset).Seconds())
		e.scheduler.After(game.GroupID, offset, func() {
			e.remind(game, model.P_DAY, fmt.Sprintf("🌞 %d seconds left to vote!", remaining))
		})
	}
	e.scheduler.After(game.GroupID, deadline, func() { e.onDayDeadline(game) })
}

func (e *Engine) armHunter(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	e.scheduler.After(game.GroupID, e.config.HunterGrace(), func() { e.onHunterDeadline(game) })
}

// remind posts a purely informational notice; it never changes state.
func (e *Engine) remind(game *logic.Game, phase model.Phase, text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(game) || game.Phase != phase || game.PendingHunter != "" {
		return
	}
	e.messenger.SendText(game.GroupID, text)
}

func (e *Engine) onWaitingDeadline(game *logic.Game) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(game) || game.Phase != model.P_WAITING_PLAYERS {
		return
	}
	e.startGame(game, true)
}

func (e *Engine) onNightDeadline(game *logic.Game) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(game) || game.Phase != model.P_NIGHT || game.PendingHunter != "" {
		return
	}
	e.resolveNight(game)
}

func (e *Engine) onDayDeadline(game *logic.Game) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(game) || game.Phase != model.P_DAY || game.PendingHunter != "" {
		return
	}
	e.resolveDay(game)
}

func (e *Engine) onHunterDeadline(game *logic.Game) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.current(game) || game.PendingHunter == "" {
		return
	}
	if e.safeResolve(game, game.ConcludeHunter, func() { e.onHunterDeadline(game) }) {
		e.advance(game)
	}
}

// ---- resolution ----

func (e *Engine) resolveNight(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	if e.safeResolve(game, game.ResolveNight, func() { e.onNightDeadline(game) }) {
		e.advance(game)
	}
}

func (e *Engine) resolveDay(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	if e.safeResolve(game, game.ResolveDay, func() { e.onDayDeadline(game) }) {
		e.advance(game)
	}
}

// concludeHunter runs after the pending hunter submitted their shot.
func (e *Engine) concludeHunter(game *logic.Game) {
	e.scheduler.CancelGroup(game.GroupID)
	if e.safeResolve(game, game.ConcludeHunter, func() { e.onHunterDeadline(game) }) {
		e.advance(game)
	}
}

// safeResolve shields the process from a resolution fault. On panic the
// operator is alerted, the group is told, and the retry is re-armed so the
// game stays resumable.
func (e *Engine) safeResolve(game *logic.Game, fn func(), retry func()) (ok bool) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ok = false
		slog.Error("resolution fault", "id", game.ID, "group", game.GroupID, "panic", r)
		if e.config.OperatorAddress != "" {
			e.messenger.SendText(e.config.OperatorAddress,
				fmt.Sprintf("⚠️ Resolution fault in game %s: %v", game.ID, r))
		}
		e.messenger.SendText(game.GroupID, "⚠️ Something went wrong. Retrying shortly...")
		e.scheduler.After(game.GroupID, resolveRetryDelay, retry)
	}()
	fn()
	return true
}

// advance routes the game after a resolution step: suspend on a pending
// hunter, honor a forced win, consult the evaluator, else flip the phase.
func (e *Engine) advance(game *logic.Game) {
	if game.PendingHunter != "" {
		e.armHunter(game)
		e.snapshot(game)
		return
	}
	if game.ForcedWin != model.W_NONE {
		e.endGame(game, game.ForcedWin)
		return
	}
	if winner := logic.EvaluateWin(game.Players); winner != model.W_NONE {
		e.endGame(game, winner)
		return
	}
	if game.NextPhase == model.P_DAY {
		e.beginDay(game)
	} else {
		e.beginNight(game)
	}
}

func (e *Engine) endGame(game *logic.Game, winner model.Winner) {
	game.Conclude(winner)
	e.destroyGame(game)
}

// ---- scoreboard ----

func (e *Engine) sendPoints(to string, playerID string) {
	record, err := e.ledger.GetPlayer(playerID)
	if err != nil {
		slog.Error("ledger lookup failed", "player", playerID, "error", err)
		return
	}
	if record == nil {
		e.messenger.SendText(to, "🏅 You have no points yet. Join a game!")
		return
	}
	e.messenger.SendText(to, fmt.Sprintf("🏅 *%s*: %d points over %d games.",
		record.Name, record.Points, record.GamesPlayed))
}

func (e *Engine) sendScoreboard(to string) {
	records, err := e.ledger.TopPlayers(10)
	if err != nil {
		slog.Error("scoreboard query failed", "error", err)
		return
	}
	if len(records) == 0 {
		e.messenger.SendText(to, "🏅 Nobody has played yet.")
		return
	}
	var b strings.Builder
	b.WriteString("🏆 Scoreboard:\n")
	for i, record := range records {
		fmt.Fprintf(&b, "%d. %s: %d\n", i+1, record.Name, record.Points)
	}
	e.messenger.SendText(to, b.String())
}

// GameStatus is the operator-facing view of one running game.
type GameStatus struct {
	ID      string      `json:"id"`
	Group   string      `json:"group"`
	Phase   model.Phase `json:"phase"`
	Night   int         `json:"night"`
	Players int         `json:"players"`
	Alive   int         `json:"alive"`
}

// Status lists every running game for the HTTP status endpoint.
func (e *Engine) Status() []GameStatus {
	e.mu.Lock()
	defer e.mu.Unlock()
	games := e.registry.Snapshot()
	out := make([]GameStatus, 0, len(games))
	for _, g := range games {
		out = append(out, GameStatus{
			ID:      g.ID,
			Group:   g.GroupID,
			Phase:   g.Phase,
			Night:   g.Night,
			Players: len(g.Players),
			Alive:   g.AliveCount(),
		})
	}
	return out
}
