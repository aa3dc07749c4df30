package agent

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/domain"
	"bomberman-client/internal/network"
	"bomberman-client/pkg/api"
	"bomberman-client/pkg/arena"
	"bomberman-client/pkg/utils"
)

// Параметры офлайн-симуляции
const (
	PlayerSpeed = 120.0 // пикселей в секунду
	BombFuse    = 2 * time.Second
	BlastRange  = 2
	// hitbox - игрок чуть меньше клетки, иначе не пролезть между колоннами.
	hitbox = arena.CellSize - 12
)

type offlinePlayer struct {
	pos    domain.Vec2 // левый верхний угол в пикселях
	inputs api.InputFields
	lives  int
	bombs  int
}

type offlineBomb struct {
	id    string
	owner string
	cell  arena.Cell
	fuse  time.Duration
}

// updateFrame - game_update офлайн-сервера. Списки всегда полные, поэтому
// без omitempty: пустой список должен дойти до клиента как [].
type updateFrame struct {
	Players       map[string]api.PlayerView `json:"players"`
	Enemies       []api.EnemyView           `json:"enemies"`
	Projectiles   []api.ProjectileView      `json:"projectiles"`
	Pickups       []api.PickupView          `json:"pickups"`
	MapDelta      []api.CellDeltaView       `json:"mapDelta,omitempty"`
	RemainingTime *float64                  `json:"remainingTime,omitempty"`
}

// Offline - минимальный игровой сервер поверх Peer: одна арена, движение,
// бомбы и разрушаемые блоки. Нужен, чтобы бот и клиент работали без сети.
type Offline struct {
	peer *network.Peer
	log  logrus.FieldLogger

	mu       sync.Mutex
	gameID   string
	arena    *arena.Arena
	grid     *domain.Grid
	players  map[string]*offlinePlayer
	order    []string
	local    string
	bombs    []*offlineBomb
	bombSeq  int
	elapsed  time.Duration
	Duration time.Duration
	over     bool
}

// NewOffline регистрирует обработчики на Peer.
func NewOffline(peer *network.Peer, log logrus.FieldLogger) *Offline {
	o := &Offline{
		peer:     peer,
		log:      log.WithField("component", "offline_server"),
		players:  make(map[string]*offlinePlayer),
		Duration: 3 * time.Minute,
	}
	peer.KeepHistory(false)
	peer.On(api.EventCreateGame, o.handleCreate)
	peer.On(api.EventJoinGame, o.handleJoin)
	peer.On(api.EventGetGameState, o.handleGetState)
	peer.On(api.EventInput, o.handleInput)
	peer.On(api.EventPlaceBomb, o.handlePlaceBomb)
	return o
}

// GameID - текущая игра (пусто, пока никто не создал и не вошел).
func (o *Offline) GameID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gameID
}

func (o *Offline) handleCreate(_ network.Message, reply func(any)) {
	id := "offline-" + utils.GenerateID()[:8]
	o.mu.Lock()
	o.startGame(id)
	o.mu.Unlock()
	if reply != nil {
		reply(api.CreateGameResponse{Success: true, GameID: id})
	}
}

func (o *Offline) handleJoin(m network.Message, reply func(any)) {
	var req api.JoinGameRequest
	if err := m.Decode(&req); err != nil || req.Validate() != nil {
		if reply != nil {
			reply(api.JoinGameResponse{Success: false, Message: "invalid join request"})
		}
		return
	}

	o.mu.Lock()
	if o.gameID != req.GameID {
		o.startGame(req.GameID)
	}
	id := req.PlayerID
	if id == "" {
		id = fmt.Sprintf("p%d", len(o.order)+1)
	}
	if _, ok := o.players[id]; !ok {
		spawn := o.arena.Players[len(o.order)%len(o.arena.Players)]
		x, y := arena.CellOrigin(spawn)
		o.players[id] = &offlinePlayer{pos: domain.Vec2{X: x, Y: y}, lives: 3, bombs: 1}
		o.order = append(o.order, id)
	}
	o.local = id
	state := o.stateView()
	o.mu.Unlock()

	o.log.WithFields(logrus.Fields{"game_id": req.GameID, "player_id": id}).Info("Player joined offline game")
	if reply != nil {
		reply(api.JoinGameResponse{Success: true, PlayerID: id, State: state})
	}
}

func (o *Offline) handleGetState(_ network.Message, reply func(any)) {
	if reply == nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.arena == nil {
		reply(api.GameStateResponse{Success: false, Message: "no game"})
		return
	}
	reply(api.GameStateResponse{Success: true, State: o.stateView()})
}

func (o *Offline) handleInput(m network.Message, _ func(any)) {
	var p api.InputPayload
	if err := m.Decode(&p); err != nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if pl, ok := o.players[o.local]; ok && p.GameID == o.gameID {
		pl.inputs = p.Inputs
	}
}

func (o *Offline) handlePlaceBomb(m network.Message, _ func(any)) {
	var p api.PlaceBombPayload
	if err := m.Decode(&p); err != nil {
		return
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	pl, ok := o.players[o.local]
	if !ok || p.GameID != o.gameID || pl.bombs == 0 || pl.lives == 0 {
		return
	}
	cell := cellOf(pl.pos)
	for _, b := range o.bombs {
		if b.cell == cell {
			return
		}
	}
	o.bombSeq++
	pl.bombs--
	o.bombs = append(o.bombs, &offlineBomb{
		id:    fmt.Sprintf("b%d", o.bombSeq),
		owner: o.local,
		cell:  cell,
		fuse:  BombFuse,
	})
}

// startGame вызывается под mu.
func (o *Offline) startGame(id string) {
	o.gameID = id
	o.arena = arena.Generate(id, 1)
	o.grid = o.arena.Grid.Clone()
	o.players = make(map[string]*offlinePlayer)
	o.order = nil
	o.local = ""
	o.bombs = nil
	o.elapsed = 0
	o.over = false
}

// Step продвигает симуляцию на dt и шлет клиенту game_update.
func (o *Offline) Step(dt time.Duration) {
	o.mu.Lock()
	if o.arena == nil || o.over {
		o.mu.Unlock()
		return
	}
	o.elapsed += dt

	for _, id := range o.order {
		o.move(o.players[id], dt)
	}
	deltas := o.tickBombs(dt)

	remaining := math.Max(0, (o.Duration - o.elapsed).Seconds())
	frame := updateFrame{
		Players:       o.playerViews(),
		Enemies:       o.enemyViews(),
		Projectiles:   o.bombViews(),
		Pickups:       []api.PickupView{},
		MapDelta:      deltas,
		RemainingTime: &remaining,
	}
	over, reason, winner := o.checkOver()
	o.over = over
	o.mu.Unlock()

	o.peer.Emit(api.EventGameUpdate, frame)
	if over {
		o.log.WithField("reason", reason).Info("Offline game over")
		o.peer.Emit(api.EventGameOver, api.GameOverView{Reason: reason, WinnerID: winner})
	}
}

func (o *Offline) move(p *offlinePlayer, dt time.Duration) {
	if p.lives == 0 {
		return
	}
	var dir domain.Vec2
	switch {
	case p.inputs.Up && !p.inputs.Down:
		dir.Y = -1
	case p.inputs.Down && !p.inputs.Up:
		dir.Y = 1
	}
	switch {
	case p.inputs.Left && !p.inputs.Right:
		dir.X = -1
	case p.inputs.Right && !p.inputs.Left:
		dir.X = 1
	}
	step := PlayerSpeed * dt.Seconds()

	// Оси двигаются независимо, чтобы скользить вдоль стен.
	if next := (domain.Vec2{X: p.pos.X + dir.X*step, Y: p.pos.Y}); dir.X != 0 && o.fits(next) {
		p.pos = next
	}
	if next := (domain.Vec2{X: p.pos.X, Y: p.pos.Y + dir.Y*step}); dir.Y != 0 && o.fits(next) {
		p.pos = next
	}
}

// fits проверяет углы хитбокса, выровненного по центру клетки игрока.
func (o *Offline) fits(pos domain.Vec2) bool {
	const pad = (arena.CellSize - hitbox) / 2
	for _, c := range [][2]float64{
		{pos.X + pad, pos.Y + pad},
		{pos.X + pad + hitbox, pos.Y + pad},
		{pos.X + pad, pos.Y + pad + hitbox},
		{pos.X + pad + hitbox, pos.Y + pad + hitbox},
	} {
		if !o.grid.Passable(int(c[0]/arena.CellSize), int(c[1]/arena.CellSize)) {
			return false
		}
	}
	return true
}

// tickBombs взрывает бомбы с истекшим фитилем и возвращает изменения карты.
func (o *Offline) tickBombs(dt time.Duration) []api.CellDeltaView {
	var deltas []api.CellDeltaView
	alive := o.bombs[:0]
	for _, b := range o.bombs {
		b.fuse -= dt
		if b.fuse > 0 {
			alive = append(alive, b)
			continue
		}
		deltas = append(deltas, o.explode(b)...)
	}
	o.bombs = alive
	return deltas
}

func (o *Offline) explode(b *offlineBomb) []api.CellDeltaView {
	if owner, ok := o.players[b.owner]; ok {
		owner.bombs++
	}

	blast := []arena.Cell{b.cell}
	var deltas []api.CellDeltaView
	for _, a := range domain.MoveActions {
		dx, dy := a.Step()
		for r := 1; r <= BlastRange; r++ {
			c := arena.Cell{X: b.cell.X + dx*r, Y: b.cell.Y + dy*r}
			t, ok := o.grid.At(c.X, c.Y)
			if !ok || t == domain.CellSolidWall {
				break
			}
			blast = append(blast, c)
			if t == domain.CellBreakableBlock {
				next := domain.CellEmpty
				if c == o.arena.Exit {
					next = domain.CellLevelExit
				}
				o.grid.Set(c.X, c.Y, next)
				deltas = append(deltas, api.CellDeltaView{X: c.X, Y: c.Y, Type: int(next)})
				break
			}
		}
	}

	for _, p := range o.players {
		if p.lives == 0 {
			continue
		}
		pc := cellOf(p.pos)
		for _, c := range blast {
			if c == pc {
				p.lives--
				break
			}
		}
	}
	return deltas
}

func (o *Offline) checkOver() (bool, string, string) {
	if o.elapsed >= o.Duration {
		return true, "time", ""
	}
	alive := 0
	for _, id := range o.order {
		p := o.players[id]
		if p.lives > 0 {
			alive++
		}
		if t, _ := o.grid.At(cellOf(p.pos).X, cellOf(p.pos).Y); t == domain.CellLevelExit && p.lives > 0 {
			return true, "exit", id
		}
	}
	if len(o.order) > 0 && alive == 0 {
		return true, "eliminated", ""
	}
	return false, "", ""
}

func (o *Offline) stateView() *api.GameStateView {
	view := o.arena.StateView(nil)
	view.Map = rowsOf(o.grid)
	view.Players = o.playerViews()
	view.Projectiles = o.bombViews()
	return view
}

func (o *Offline) playerViews() map[string]api.PlayerView {
	out := make(map[string]api.PlayerView, len(o.players))
	for id, p := range o.players {
		out[id] = api.PlayerView{
			X: p.pos.X, Y: p.pos.Y, Size: arena.CellSize,
			Lives: p.lives, Bombs: p.bombs,
		}
	}
	return out
}

func (o *Offline) enemyViews() []api.EnemyView {
	return o.arena.EnemyViews()
}

func (o *Offline) bombViews() []api.ProjectileView {
	out := make([]api.ProjectileView, 0, len(o.bombs))
	for _, b := range o.bombs {
		x, y := arena.CellOrigin(b.cell)
		out = append(out, api.ProjectileView{
			ID: b.id, Kind: "bomb", OwnerID: b.owner,
			X: x + arena.CellSize/2, Y: y + arena.CellSize/2, Radius: arena.CellSize / 3.0,
		})
	}
	return out
}

func cellOf(pos domain.Vec2) arena.Cell {
	return arena.Cell{
		X: int((pos.X + arena.CellSize/2) / arena.CellSize),
		Y: int((pos.Y + arena.CellSize/2) / arena.CellSize),
	}
}

func rowsOf(g *domain.Grid) [][]int {
	rows := make([][]int, len(g.Rows))
	for y, row := range g.Rows {
		rows[y] = make([]int, len(row))
		for x, c := range row {
			rows[y][x] = int(c)
		}
	}
	return rows
}
