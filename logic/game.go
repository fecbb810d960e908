package logic

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/garoulab/garou-bot/model"
	"github.com/garoulab/garou-bot/service"
	"github.com/garoulab/garou-bot/util"
	"github.com/oklog/ulid/v2"
)

// Game is the per-group werewolf state. All mutation goes through its
// methods; the engine serializes access so only one handler touches it at a
// time. Exported fields are the snapshot state, everything else is rewired
// on restore.
type Game struct {
	ID      string       `json:"id"`
	GroupID string       `json:"groupId"`
	Phase   model.Phase  `json:"phase"`
	Night   int          `json:"night"`
	Players []*model.Player `json:"players"`

	// Night choices, reset when night begins.
	WolfChoices      map[string]string `json:"wolfChoices"`
	SeerChoice       string            `json:"seerChoice"`
	DoctorChoice     string            `json:"doctorChoice"`
	WitchHealArmed   bool              `json:"witchHealArmed"`
	ProstituteChoice string            `json:"prostituteChoice"`
	ProstituteGuard  []string          `json:"prostituteGuard"`
	SeerFakeWolves   []string          `json:"seerFakeWolves"`
	SerialChoice     string            `json:"serialChoice"`
	IgniteArmed      bool              `json:"igniteArmed"`

	// Multi-night and one-shot state.
	OiledTargets    []string `json:"oiledTargets"`
	WitchHealUsed   bool     `json:"witchHealUsed"`
	WitchPoisonUsed bool     `json:"witchPoisonUsed"`
	CupidUsed       bool     `json:"cupidUsed"`
	MayorPowerUsed  bool     `json:"mayorPowerUsed"`
	VotesStopped    bool     `json:"votesStopped"`
	AlphaConverted  bool     `json:"alphaConverted"`

	// Day votes, reset when day begins.
	Votes map[string]string `json:"votes"`

	// Pending-hunter sub-state. At most one hunter is awaiting input; the
	// rest of a multi-death night queues behind it.
	PendingHunter string   `json:"pendingHunter"`
	HunterTarget  string   `json:"hunterTarget"`
	HunterQueue   []string `json:"hunterQueue"`

	// Where the state machine goes once the current resolution concludes.
	NextPhase model.Phase  `json:"nextPhase"`
	ForcedWin model.Winner `json:"forcedWin"`

	config     *model.Config
	messenger  service.Messenger
	ledger     service.Ledger
	gameLogger *service.GameLogger
	rng        *rand.Rand
}

func NewGame(groupID string, config *model.Config, messenger service.Messenger, ledger service.Ledger, rng *rand.Rand) *Game {
	game := &Game{
		ID:          ulid.Make().String(),
		GroupID:     groupID,
		Phase:       model.P_WAITING_PLAYERS,
		Players:     make([]*model.Player, 0),
		WolfChoices: make(map[string]string),
		Votes:       make(map[string]string),
		ForcedWin:   model.W_NONE,
		config:      config,
		messenger:   messenger,
		ledger:      ledger,
		rng:         rng,
	}
	slog.Info("game created", "id", game.ID, "group", groupID)
	return game
}

// RestoreGame rebuilds a game from its snapshot and rewires dependencies.
func RestoreGame(data json.RawMessage, config *model.Config, messenger service.Messenger, ledger service.Ledger, rng *rand.Rand) (*Game, error) {
	var game Game
	if err := json.Unmarshal(data, &game); err != nil {
		return nil, err
	}
	if game.WolfChoices == nil {
		game.WolfChoices = make(map[string]string)
	}
	if game.Votes == nil {
		game.Votes = make(map[string]string)
	}
	if game.ForcedWin == "" {
		game.ForcedWin = model.W_NONE
	}
	game.config = config
	game.messenger = messenger
	game.ledger = ledger
	game.rng = rng
	slog.Info("game restored", "id", game.ID, "group", game.GroupID, "phase", game.Phase)
	return &game, nil
}

func (g *Game) SetGameLogger(gameLogger *service.GameLogger) {
	g.gameLogger = gameLogger
}

func (g *Game) appendLog(line string) {
	if g.gameLogger != nil {
		g.gameLogger.AppendLog(g.ID, line)
	}
}

func (g *Game) playerByID(id string) *model.Player {
	return util.FindPlayer(g.Players, func(p *model.Player) bool {
		return p.ID == id
	})
}

func (g *Game) livingPlayerByID(id string) *model.Player {
	return util.FindPlayer(g.Players, func(p *model.Player) bool {
		return p.ID == id && !p.IsDead
	})
}

// PlayerByNumber resolves the 1-indexed roster shorthand used in commands.
func (g *Game) PlayerByNumber(number int) *model.Player {
	if number < 1 || number > len(g.Players) {
		return nil
	}
	return g.Players[number-1]
}

func (g *Game) HasPlayer(id string) bool {
	return g.playerByID(id) != nil
}

func (g *Game) alivePlayers() []*model.Player {
	return util.FilterPlayers(g.Players, func(p *model.Player) bool {
		return !p.IsDead
	})
}

func (g *Game) aliveWolves() []*model.Player {
	return util.FilterPlayers(g.Players, func(p *model.Player) bool {
		return !p.IsDead && p.Role.IsWolf()
	})
}

// rosterLines renders the numbered player list. Wolves see their pack
// marked; at game end roles are revealed for everyone.
func (g *Game) rosterLines(viewer *model.Player, revealRoles bool) (string, []string) {
	lines := make([]string, 0, len(g.Players))
	mentions := make([]string, 0, len(g.Players))
	for i, p := range g.Players {
		marker := "😀"
		if p.IsDead {
			marker = "☠️"
		} else if viewer != nil && viewer.Role.IsWolf() && p.Role.IsWolf() {
			marker = "🐺"
		}
		line := fmt.Sprintf("[%d] - *%s* (@%s) %s", i+1, p.Name, p.Mention(), marker)
		if revealRoles {
			line += " [" + p.Role.Name + "]"
		}
		lines = append(lines, line)
		mentions = append(mentions, p.ID)
	}
	return strings.Join(lines, "\n"), mentions
}

func (g *Game) sendRoster(to string, viewer *model.Player, revealRoles bool) {
	roster, mentions := g.rosterLines(viewer, revealRoles)
	g.messenger.SendText(to, "Players:\n\n"+roster, mentions...)
}

// award records a point delta both in the persistent ledger and in the
// per-game summary cache.
func (g *Game) award(p *model.Player, delta int, reason string, gameInc int) {
	p.AddPoints(delta, reason)
	if g.ledger == nil {
		return
	}
	if err := g.ledger.AddPoints(p.ID, p.Name, delta, reason, gameInc); err != nil {
		slog.Error("ledger update failed", "player", p.ID, "reason", reason, "error", err)
	}
}

// Join adds a player during the waiting phase. Cross-group exclusivity is
// the registry's job; this validates everything local to the game.
func (g *Game) Join(playerID string, name string) error {
	if g.Phase != model.P_WAITING_PLAYERS {
		return Reject("⚠️ No joinable game right now.")
	}
	if g.HasPlayer(playerID) {
		return Reject("😐 You already joined, didn't you?")
	}
	player := &model.Player{ID: playerID, Name: name, Role: model.R_NONE, FakeRole: model.R_NONE}
	g.Players = append(g.Players, player)
	g.award(player, model.PointsJoinGame, model.ReasonJoinGame, 1)
	slog.Info("player joined", "id", g.ID, "player", playerID, "count", len(g.Players))

	roster, mentions := g.rosterLines(nil, false)
	g.messenger.SendText(g.GroupID, fmt.Sprintf("✅ %s joined!\n\nPlayers:\n\n%s", name, roster), mentions...)
	return nil
}

// Start assigns roles and moves the game into its first night. It returns
// ErrNotEnoughPlayers or ErrBadDistribution when the game cannot begin; the
// caller destroys the game and tells the group to retry.
func (g *Game) Start() error {
	if g.Phase != model.P_WAITING_PLAYERS {
		return nil
	}
	if len(g.Players) < g.config.Game.MinPlayers {
		return ErrNotEnoughPlayers
	}
	g.Phase = model.P_ASSIGNING_ROLES

	roles := GenerateRoles(g.rng, len(g.Players))
	if err := ValidateRoles(roles); err != nil {
		return err
	}
	for i, p := range g.Players {
		p.Role = roles[i]
	}

	// At most one wolf gets the alpha upgrade; odds depend on table size.
	chance := AlphaUpgradeChance(g.config, len(g.Players))
	for _, p := range g.Players {
		if p.Role == model.R_WEREWOLF && g.rng.Float64() < chance {
			p.Role = model.R_ALPHAWOLF
			break
		}
	}
	// Each madman gets a cosmetic role it believes it holds.
	for _, p := range g.Players {
		if p.Role == model.R_MADMAN {
			p.FakeRole = model.FakeRolePool[g.rng.Intn(len(model.FakeRolePool))]
		}
	}

	if g.gameLogger != nil {
		g.gameLogger.TrackStartGame(g.ID, g.Players)
	}
	g.messenger.SendImage(g.GroupID, "start", "🐺 The hunt begins! Check your private messages for your role.")
	for i, p := range g.Players {
		g.appendLog(fmt.Sprintf("0,role,%d,%s", i+1, p.Role.Name))
		g.award(p, model.PointsStartSuccessfulGame, model.ReasonStartSuccessfulGame, 0)
		g.messenger.SendText(p.ID, fmt.Sprintf("🎭 Your role is: *%s*", p.VisibleRole().Name))
	}
	slog.Info("roles assigned", "id", g.ID, "players", len(g.Players))
	return nil
}

// BeginNight resets per-night choices, prompts every live actor privately
// and announces nightfall to the group. The engine arms the timers.
func (g *Game) BeginNight() {
	g.Phase = model.P_NIGHT
	g.Night++
	g.WolfChoices = make(map[string]string)
	g.SeerChoice = ""
	g.DoctorChoice = ""
	g.WitchHealArmed = false
	g.ProstituteChoice = ""
	g.ProstituteGuard = nil
	g.SeerFakeWolves = nil
	g.SerialChoice = ""
	g.IgniteArmed = false
	g.NextPhase = model.P_DAY
	slog.Info("night begins", "id", g.ID, "night", g.Night)
	g.appendLog(fmt.Sprintf("%d,night", g.Night))

	for _, p := range g.alivePlayers() {
		if prompt := g.nightPrompt(p); prompt != "" {
			g.messenger.SendText(p.ID, prompt)
			if g.wantsNightRoster(p) {
				g.sendRoster(p.ID, p, false)
			}
		}
	}
	g.messenger.SendImage(g.GroupID, "nightfall", "🌙 Night has fallen...\nOnly the prostitutes roam... or so they think.")
}

func (g *Game) nightPrompt(p *model.Player) string {
	switch p.Role {
	case model.R_WEREWOLF, model.R_ALPHAWOLF:
		return "🐺 Night:\nSend *!kill <victim number>* to vote who the pack devours."
	case model.R_SEER:
		return "🔮 Night:\nSend *!see <player number>* to learn whether they are a wolf."
	case model.R_DOCTOR:
		return "💉 Night:\nSend *!save <player number>* to protect someone."
	case model.R_WITCH:
		if g.WitchHealUsed && g.WitchPoisonUsed {
			return ""
		}
		return "🧪 Night:\nSend\n- *!heal* (save tonight's wolf victim) or\n- *!poison <victim number>* (kill someone).\nYou may do each only once for the whole game."
	case model.R_CUPID:
		if g.Night != 1 {
			return "😴 Night:\nSleep tight."
		}
		return "❤️ Night:\nPick two lovers: *!love <number> <number>*. This is your only chance; afterwards you are a plain villager."
	case model.R_PROSTITUTE:
		return "💄 Night:\nSend *!visit <client number>* to spend the night with someone."
	case model.R_MAYOR:
		return "🤵 Nothing for you to do at night.\nDuring the day you may cancel the vote once with *!stopvote*."
	case model.R_SERIALKILLER:
		return "🔪 Night:\nSend *!kill <victim number>*. You hunt alone."
	case model.R_PYROMANIAC:
		return "🔥 Night:\nSend *!oil <player number>* (two may be soaked at once) or *!ignite* to light them all up."
	case model.R_MADMAN:
		// The madman is prompted as its fake role and its input goes nowhere.
		switch p.FakeRole {
		case model.R_SEER:
			return "🔮 Night:\nSend *!see <player number>* to learn whether they are a wolf."
		case model.R_PROSTITUTE:
			return "💄 Night:\nSend *!visit <client number>* to spend the night with someone."
		case model.R_MAYOR:
			return "🤵 Nothing for you to do at night.\nDuring the day you may cancel the vote once with *!stopvote*."
		default:
			return "😴 Night:\nSleep tight."
		}
	default:
		return "😴 Night:\nSleep tight."
	}
}

// wantsNightRoster reports whether the role's prompt is followed by the
// numbered roster, so targets can be picked by number.
func (g *Game) wantsNightRoster(p *model.Player) bool {
	switch p.Role {
	case model.R_VILLAGER, model.R_HUNTER, model.R_MAYOR, model.R_TANNER, model.R_MADMAN:
		return false
	case model.R_WITCH:
		return !g.WitchPoisonUsed
	case model.R_CUPID:
		return g.Night == 1
	}
	return true
}

// BeginDay opens the public voting window.
func (g *Game) BeginDay() {
	g.Phase = model.P_DAY
	g.Votes = make(map[string]string)
	g.NextPhase = model.P_NIGHT
	slog.Info("day begins", "id", g.ID, "night", g.Night)
	g.appendLog(fmt.Sprintf("%d,day", g.Night))
	g.messenger.SendText(g.GroupID, "🌞 Day: discuss and vote with *!vote <player number>*.")
	g.sendRoster(g.GroupID, nil, false)
}

// NightComplete reports whether every live actor with a required night
// action has submitted one, allowing early resolution. The witch, the
// pyromaniac and the mayor act at will and never block the night.
func (g *Game) NightComplete() bool {
	if g.Phase != model.P_NIGHT {
		return false
	}
	for _, p := range g.alivePlayers() {
		switch p.Role {
		case model.R_WEREWOLF, model.R_ALPHAWOLF:
			if _, ok := g.WolfChoices[p.ID]; !ok {
				return false
			}
		case model.R_SEER:
			if g.SeerChoice == "" {
				return false
			}
		case model.R_DOCTOR:
			if g.DoctorChoice == "" {
				return false
			}
		case model.R_PROSTITUTE:
			if g.ProstituteChoice == "" {
				return false
			}
		case model.R_SERIALKILLER:
			if g.SerialChoice == "" {
				return false
			}
		case model.R_CUPID:
			if g.Night == 1 && !g.CupidUsed {
				return false
			}
		}
	}
	return true
}

// PlayerByID looks a player up by chat address.
func (g *Game) PlayerByID(id string) *model.Player {
	return g.playerByID(id)
}

// AnnounceRoster posts the numbered roster to the group.
func (g *Game) AnnounceRoster() {
	g.sendRoster(g.GroupID, nil, false)
}

// AliveCount is used by the engine to scale the day deadline.
func (g *Game) AliveCount() int {
	return len(g.alivePlayers())
}

// Summary renders the end-of-game roster with roles and per-game points.
func (g *Game) Summary() (string, []string) {
	roster, mentions := g.rosterLines(nil, true)
	var b strings.Builder
	b.WriteString("Players:\n\n")
	b.WriteString(roster)
	b.WriteString("\n\nPoints this game:\n")
	for _, p := range g.Players {
		fmt.Fprintf(&b, "• %s: %+d\n", p.Name, p.PointTotal())
	}
	return b.String(), mentions
}

// Conclude credits the winners, announces the outcome with the full
// role-revealing summary and flushes the game log. The engine tears the
// game down afterwards.
func (g *Game) Conclude(winner model.Winner) {
	g.Phase = model.P_ENDED
	for _, p := range Winners(g.Players, winner) {
		switch winner {
		case model.W_VILLAGERS:
			g.award(p, model.PointsWinAsVillager, model.ReasonWinAsVillager, 0)
		case model.W_WOLVES:
			g.award(p, model.PointsWinAsWolf, model.ReasonWinAsWolf, 0)
		case model.W_LOVERS:
			g.award(p, model.PointsWinAsLover, model.ReasonWinAsLover, 0)
		case model.W_TANNER:
			if p.Role == model.R_TANNER {
				g.award(p, model.PointsWinAsTanner, model.ReasonWinAsTanner, 0)
			} else {
				g.award(p, model.PointsWinAsLover, model.ReasonWinAsLover, 0)
			}
		}
	}
	var banner string
	switch winner {
	case model.W_VILLAGERS:
		banner = "🎉 The Villagers win!\nEvery last wolf is dead."
	case model.W_WOLVES:
		banner = "🐺 The Werewolves win!\nThe village belongs to the pack now."
	case model.W_LOVERS:
		banner = "❤️ The Lovers win!\nOnly the two of them remain."
	case model.W_TANNER:
		banner = "🤡 The Tanner wins alone!\nGetting executed was the plan all along."
	default:
		banner = "🛑 The game is over."
	}
	g.appendLog(fmt.Sprintf("%d,winner,%s", g.Night, winner))
	g.messenger.SendText(g.GroupID, banner)
	summary, mentions := g.Summary()
	g.messenger.SendText(g.GroupID, summary, mentions...)
	if g.gameLogger != nil {
		g.gameLogger.TrackEndGame(g.ID)
	}
	slog.Info("game concluded", "id", g.ID, "winner", winner)
}
