package engine

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"bomberman-client/internal/camera"
	"bomberman-client/internal/domain"
	"bomberman-client/internal/input"
	"bomberman-client/internal/network"
	"bomberman-client/internal/state"
	"bomberman-client/internal/watchdog"
	"bomberman-client/pkg/api"
)

var (
	ErrAlreadyJoining = errors.New("join already in progress")
	ErrNoGame         = errors.New("no game selected")
)

// Recorder получает каждое входящее игровое событие (запись трассы).
type Recorder interface {
	Record(event string, data []byte) error
}

// Session связывает транспорт с локальной репликой: разбирает события сервера,
// отправляет запросы и отслеживает, идет ли сейчас игра.
//
// Все методы и обработчики выполняются в цикле кадров. Подтверждения, пришедшие
// после Leave/Stop или для другой игры, игнорируются по флагу generation.
type Session struct {
	socket   network.Socket
	store    *state.Store
	watchdog *watchdog.Watchdog
	camera   *camera.Controller
	input    *input.State
	log      logrus.FieldLogger

	gameID   string
	playerID string

	joining bool
	active  bool
	stopped bool
	// generation растет при каждом Join/Leave/Stop. Колбэк сверяет свою копию.
	generation uint64

	status    Status
	statusMsg string
	onStatus  StatusFunc

	// OnConnectError и OnDisconnect подключает SessionGuard.
	OnConnectError func(api.ConnectErrorView)
	OnDisconnect   func(reason string)

	recorder Recorder
	lastErr  string
}

func newSession(socket network.Socket, store *state.Store, wd *watchdog.Watchdog,
	cam *camera.Controller, in *input.State, log logrus.FieldLogger) *Session {
	return &Session{
		socket:   socket,
		store:    store,
		watchdog: wd,
		camera:   cam,
		input:    in,
		log:      log.WithField("component", "session"),
	}
}

// Attach подписывается на события транспорта.
func (s *Session) Attach() {
	s.socket.On(api.EventConnect, s.handleConnect)
	s.socket.On(api.EventDisconnect, s.handleDisconnect)
	s.socket.On(api.EventConnectError, s.handleConnectError)
	s.socket.On(api.EventGameState, s.handleGameState)
	s.socket.On(api.EventGameUpdate, s.handleGameUpdate)
	s.socket.On(api.EventPlayerLeft, s.handlePlayerLeft)
	s.socket.On(api.EventGameOver, s.handleGameOver)
}

// Detach снимает все обработчики.
func (s *Session) Detach() {
	for _, e := range []string{
		api.EventConnect, api.EventDisconnect, api.EventConnectError,
		api.EventGameState, api.EventGameUpdate, api.EventPlayerLeft, api.EventGameOver,
	} {
		s.socket.Off(e)
	}
}

func (s *Session) OnStatus(fn StatusFunc) { s.onStatus = fn }

func (s *Session) SetRecorder(r Recorder) { s.recorder = r }

// Active true, когда игра выбрана и локальный игрок известен.
func (s *Session) Active() bool { return s.active && !s.stopped }

func (s *Session) GameID() string   { return s.gameID }
func (s *Session) PlayerID() string { return s.playerID }
func (s *Session) Status() Status   { return s.status }

// LastError - последнее сообщение об ошибке для UI.
func (s *Session) LastError() string { return s.lastErr }

func (s *Session) setStatus(st Status, msg string) {
	if st == s.status && msg == s.statusMsg {
		return
	}
	s.status = st
	s.statusMsg = msg
	s.log.WithFields(logrus.Fields{"status": st, "message": msg}).Info("Session status changed")
	if s.onStatus != nil {
		s.onStatus(st, msg)
	}
}

func (s *Session) fail(st Status, msg string) {
	s.lastErr = msg
	s.setStatus(st, msg)
}

// CreateGame просит сервер создать игру. done вызывается в цикле кадров.
func (s *Session) CreateGame(done func(gameID string, err error)) error {
	gen := s.generation
	return s.socket.Emit(api.EventCreateGame, struct{}{}, func(m network.Message, err error) {
		if s.stopped || gen != s.generation {
			return
		}
		if err == nil {
			var resp api.CreateGameResponse
			if err = m.Decode(&resp); err == nil && !resp.Success {
				err = fmt.Errorf("create game rejected: %s", resp.Message)
			}
			if err == nil {
				s.log.WithField("game_id", resp.GameID).Info("Game created")
				done(resp.GameID, nil)
				return
			}
		}
		s.log.WithError(err).Warn("Create game failed")
		s.lastErr = err.Error()
		done("", err)
	})
}

// Join входит в игру. playerID может быть пустым: тогда его назначит сервер.
// Отказ сервера - это сообщение пользователю, сессия не начинается.
func (s *Session) Join(gameID, playerID string, done func(error)) error {
	if s.stopped {
		return errors.New("session stopped")
	}
	if s.joining {
		return ErrAlreadyJoining
	}
	req := api.JoinGameRequest{GameID: gameID, PlayerID: playerID}
	if err := req.Validate(); err != nil {
		return err
	}

	if gameID != s.gameID {
		s.resetReplica()
	}
	s.generation++
	gen := s.generation
	s.gameID = gameID
	s.playerID = playerID
	s.joining = true
	s.active = false
	s.setStatus(StatusJoining, "")

	err := s.socket.Emit(api.EventJoinGame, req, func(m network.Message, err error) {
		if s.stopped || gen != s.generation {
			s.log.WithField("game_id", gameID).Debug("Late join ack ignored")
			return
		}
		s.joining = false
		if err == nil {
			err = s.finishJoin(m)
		}
		if err != nil {
			s.log.WithError(err).WithField("game_id", gameID).Warn("Join failed")
			s.fail(StatusIdle, err.Error())
		}
		if done != nil {
			done(err)
		}
	})
	if err != nil {
		s.joining = false
		s.fail(StatusDisconnected, err.Error())
		return err
	}
	return nil
}

func (s *Session) finishJoin(m network.Message) error {
	var resp api.JoinGameResponse
	if err := m.Decode(&resp); err != nil {
		return fmt.Errorf("decode join response: %w", err)
	}
	if !resp.Success {
		msg := resp.Message
		if msg == "" {
			msg = "join rejected"
		}
		return errors.New(msg)
	}
	if resp.PlayerID != "" {
		s.playerID = resp.PlayerID
	}
	if s.playerID == "" {
		return errors.New("server did not assign a player id")
	}
	if resp.State != nil {
		s.recordState(m, resp.State)
		s.applyStateView(resp.State)
	}
	s.active = true
	s.lastErr = ""
	s.watchdog.Reset()
	s.setStatus(StatusPlaying, "")
	s.log.WithFields(logrus.Fields{
		"game_id":   s.gameID,
		"player_id": s.playerID,
	}).Info("Joined game")
	return nil
}

// Leave выходит из игры и забывает реплику.
func (s *Session) Leave() {
	s.generation++
	s.active = false
	s.joining = false
	s.gameID = ""
	s.playerID = ""
	s.resetReplica()
	s.setStatus(StatusIdle, "")
}

// Stop - окончательная остановка. Поздние подтверждения ничего не меняют.
func (s *Session) Stop() {
	s.generation++
	s.stopped = true
	s.active = false
	s.joining = false
	s.Detach()
}

func (s *Session) resetReplica() {
	s.store.Reset()
	s.watchdog.Reset()
	s.camera.Reset()
	s.input.Clear()
}

// RequestResync отправляет get_game_state. Это Sender для Watchdog:
// single-flight обеспечивает сам Watchdog, seq возвращается ему с ответом.
func (s *Session) RequestResync(reason string, seq uint64) bool {
	if s.gameID == "" || s.stopped {
		return false
	}
	gen := s.generation
	req := api.GameStateRequest{GameID: s.gameID}
	err := s.socket.Emit(api.EventGetGameState, req, func(m network.Message, err error) {
		if s.stopped || gen != s.generation {
			return
		}
		current := s.watchdog.Acknowledge(seq)
		if err == nil {
			// Успешный ответ на вытесненный запрос тоже годится: это полное состояние.
			err = s.finishResync(m)
		}
		if err == nil {
			return
		}
		log := s.log.WithError(err).WithFields(logrus.Fields{"reason": reason, "seq": seq})
		if !current {
			log.Debug("Superseded resync failed")
			return
		}
		// Старый снапшот остается на экране, следующий тик сторожа повторит запрос.
		log.Warn("Resync failed")
		s.lastErr = "resync failed: " + err.Error()
		if s.active {
			s.setStatus(StatusReconnecting, s.lastErr)
		}
	})
	if err != nil {
		s.log.WithError(err).Debug("Resync request not sent")
		return false
	}
	if s.active {
		s.setStatus(StatusReconnecting, "")
	}
	return true
}

func (s *Session) finishResync(m network.Message) error {
	var resp api.GameStateResponse
	if err := m.Decode(&resp); err != nil {
		return fmt.Errorf("decode resync response: %w", err)
	}
	if !resp.Success {
		return errors.New(resp.Message)
	}
	if resp.State == nil {
		return errors.New("resync response without state")
	}
	// Без карты это не полное состояние: не применяем, lastUpdate не трогаем.
	if len(resp.State.Map) == 0 {
		return errors.New("resync response without map")
	}
	s.recordState(m, resp.State)
	if !s.applyStateView(resp.State) {
		return errors.New("malformed resync state")
	}
	if s.active {
		s.lastErr = ""
		s.setStatus(StatusPlaying, "")
	}
	return nil
}

// applyStateView применяет game_state. true, если это был полный снапшот.
func (s *Session) applyStateView(v *api.GameStateView) bool {
	if len(v.Map) == 0 {
		s.store.ApplyPartial(EnvelopeFromStateView(v))
		return false
	}
	snap, err := SnapshotFromView(v, s.log)
	if err != nil {
		s.log.WithError(err).Warn("Malformed full snapshot dropped")
		return false
	}
	s.store.ApplyFull(snap)
	return true
}

func (s *Session) inGame() bool {
	return (s.active || s.joining) && !s.stopped
}

func (s *Session) record(m network.Message) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(m.Event, m.Data); err != nil {
		s.log.WithError(err).Warn("Trace record failed, recorder detached")
		s.recorder = nil
	}
}

// recordState пишет состояние из ответа на запрос как game_state,
// чтобы трасса воспроизводилась без ответов сервера.
func (s *Session) recordState(reply network.Message, v *api.GameStateView) {
	if s.recorder == nil {
		return
	}
	codec := reply.Codec()
	data, err := codec.Marshal(v)
	if err != nil {
		s.log.WithError(err).Warn("Failed to encode state for trace")
		return
	}
	s.record(network.NewMessage(api.EventGameState, data, codec))
}

// --- обработчики транспорта ---

func (s *Session) handleConnect(network.Message) {
	s.log.Info("Transport connected")
	if s.gameID != "" && s.playerID != "" && !s.joining && (s.active || s.status == StatusReconnecting || s.status == StatusDisconnected) {
		// Сервер мог забыть соединение: входим заново тем же игроком.
		if err := s.Join(s.gameID, s.playerID, nil); err != nil {
			s.log.WithError(err).Warn("Rejoin after reconnect failed")
		}
		return
	}
	if s.status == StatusConnecting || s.status == StatusDisconnected || s.status == StatusAuthRequired {
		s.setStatus(StatusIdle, "")
	}
}

func (s *Session) handleDisconnect(m network.Message) {
	var v api.DisconnectView
	_ = m.Decode(&v)
	s.log.WithField("reason", v.Reason).Warn("Transport disconnected")
	s.joining = false
	if s.active {
		s.setStatus(StatusReconnecting, "connection lost")
	} else {
		s.setStatus(StatusDisconnected, "connection lost")
	}
	if s.OnDisconnect != nil {
		s.OnDisconnect(v.Reason)
	}
}

func (s *Session) handleConnectError(m network.Message) {
	var v api.ConnectErrorView
	if err := m.Decode(&v); err != nil {
		v.Message = "connect failed"
	}
	s.log.WithFields(logrus.Fields{"code": v.Code, "message": v.Message}).Warn("Connect error")
	if s.OnConnectError != nil {
		s.OnConnectError(v)
		return
	}
	s.fail(StatusDisconnected, v.Message)
}

// MarkAuthRequired - сессию больше нельзя продолжить без повторного входа.
func (s *Session) MarkAuthRequired(msg string) {
	s.generation++
	s.active = false
	s.joining = false
	s.fail(StatusAuthRequired, msg)
}

// MarkConnecting - UI показывает подключение.
func (s *Session) MarkConnecting() {
	if s.active {
		s.setStatus(StatusReconnecting, "")
		return
	}
	s.setStatus(StatusConnecting, "")
}

func (s *Session) handleGameState(m network.Message) {
	if !s.inGame() {
		return
	}
	s.record(m)
	var v api.GameStateView
	if err := m.Decode(&v); err != nil {
		s.log.WithError(err).Warn("Malformed game_state dropped")
		return
	}
	s.applyStateView(&v)
}

func (s *Session) handleGameUpdate(m network.Message) {
	if !s.inGame() {
		return
	}
	s.record(m)
	var v api.GameUpdateView
	if err := m.Decode(&v); err != nil {
		s.log.WithError(err).Warn("Malformed game_update dropped")
		return
	}
	s.store.ApplyPartial(EnvelopeFromView(&v, s.log))
}

func (s *Session) handlePlayerLeft(m network.Message) {
	if !s.inGame() {
		return
	}
	s.record(m)
	var v api.PlayerLeftView
	if err := m.Decode(&v); err != nil || v.PlayerID == "" {
		s.log.Warn("Malformed player_left dropped")
		return
	}
	if s.store.RemovePlayer(v.PlayerID) {
		s.log.WithField("player_id", v.PlayerID).Info("Player left")
	}
}

func (s *Session) handleGameOver(m network.Message) {
	if !s.inGame() {
		return
	}
	s.record(m)
	var v api.GameOverView
	// Пустое тело допустимо.
	_ = m.Decode(&v)
	s.store.SetStatus(domain.GameStatusGameOver)
	s.active = false
	s.input.Clear()
	msg := v.Reason
	if v.WinnerID != "" {
		msg = fmt.Sprintf("%s (winner: %s)", v.Reason, v.WinnerID)
	}
	s.setStatus(StatusGameOver, msg)
}
