package main

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"holdem-platform/internal/game"
	"holdem-platform/internal/storage"
	"holdem-platform/internal/timectrl"
	"holdem-platform/internal/tournament"
	"holdem-platform/pkg/poker"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development
	},
}

// GameServer exposes the engine over REST and pushes table state over
// websockets. It also runs the shot clock that turns timeouts into
// auto-check/auto-fold commands.
type GameServer struct {
	log     slog.Logger
	manager *game.TableManager
	lobby   *tournament.Lobby
	store   storage.Store
	ids     *game.IDGenerator

	mu              sync.Mutex
	subscribers     map[uint64][]*websocket.Conn
	timers          map[uint64]*timectrl.Controller
	timedSeat       map[uint64]int
	tableTournament map[uint64]uint64
}

// NewGameServer wires the server's collaborators together
func NewGameServer(log slog.Logger, manager *game.TableManager, lobby *tournament.Lobby, store storage.Store, ids *game.IDGenerator) *GameServer {
	return &GameServer{
		log:             log,
		manager:         manager,
		lobby:           lobby,
		store:           store,
		ids:             ids,
		subscribers:     make(map[uint64][]*websocket.Conn),
		timers:          make(map[uint64]*timectrl.Controller),
		timedSeat:       make(map[uint64]int),
		tableTournament: make(map[uint64]uint64),
	}
}

// RegisterRoutes attaches every endpoint to the router
func (s *GameServer) RegisterRoutes(router *gin.Engine) {
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/:tableId", s.handleWebSocket)

	api := router.Group("/api")
	{
		api.POST("/tables", s.handleCreateTable)
		api.GET("/tables", s.handleListTables)
		api.GET("/tables/:tableId", s.handleGetTable)
		api.POST("/tables/:tableId/seats", s.handleSeatPlayer)
		api.DELETE("/tables/:tableId/seats/:seat", s.handleUnseatPlayer)
		api.POST("/tables/:tableId/stack", s.handleAdjustStack)
		api.POST("/tables/:tableId/hands", s.handleStartHand)
		api.POST("/tables/:tableId/actions", s.handlePlayerAction)

		api.POST("/tournaments", s.handleCreateTournament)
		api.GET("/tournaments/:tournamentId", s.handleGetTournament)
		api.POST("/tournaments/:tournamentId/register", s.handleRegisterPlayer)
		api.DELETE("/tournaments/:tournamentId/register/:playerId", s.handleUnregisterPlayer)
		api.POST("/tournaments/:tournamentId/start", s.handleStartTournament)
		api.POST("/tournaments/:tournamentId/tick", s.handleTimeTick)
		api.POST("/tournaments/:tournamentId/advance-level", s.handleAdvanceLevel)
		api.POST("/tournaments/:tournamentId/close", s.handleCloseTournament)
	}
}

// --- table endpoints ---

type createTableRequest struct {
	TableID    uint64 `json:"table_id"`
	Name       string `json:"name"`
	MaxSeats   int    `json:"max_seats"`
	SmallBlind uint64 `json:"small_blind"`
	BigBlind   uint64 `json:"big_blind"`
	Ante       uint64 `json:"ante"`
	AnteType   string `json:"ante_type"`
}

func (s *GameServer) handleCreateTable(c *gin.Context) {
	var req createTableRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	tableID := req.TableID
	if tableID == 0 {
		tableID = s.ids.NextTableID()
	}

	config := game.TableConfig{
		MaxSeats:  req.MaxSeats,
		TableType: game.TableCash,
		Stakes: game.TableStakes{
			SmallBlind: poker.Chips(req.SmallBlind),
			BigBlind:   poker.Chips(req.BigBlind),
			Ante:       poker.Chips(req.Ante),
			AnteType:   parseAnteType(req.AnteType),
		},
	}

	table, err := s.manager.CreateTable(tableID, req.Name, config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.persistTable(table)
	c.JSON(http.StatusCreated, gin.H{"table_id": tableID})
}

func (s *GameServer) handleListTables(c *gin.Context) {
	heroID := parseUintQuery(c, "hero")
	views := make([]game.TableViewDto, 0)
	for _, id := range s.manager.TableIDs() {
		view, err := s.manager.View(id, heroID, s.resolveName)
		if err != nil {
			continue
		}
		views = append(views, view)
	}
	c.JSON(http.StatusOK, views)
}

func (s *GameServer) handleGetTable(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}
	view, err := s.manager.View(tableID, parseUintQuery(c, "hero"), s.resolveName)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

type seatPlayerRequest struct {
	Seat        int    `json:"seat"`
	PlayerID    uint64 `json:"player_id"`
	DisplayName string `json:"display_name"`
	Stack       uint64 `json:"stack"`
}

func (s *GameServer) handleSeatPlayer(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}
	var req seatPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := s.manager.SeatPlayer(tableID, req.Seat, req.PlayerID, poker.Chips(req.Stack)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DisplayName != "" {
		_ = s.store.SetPlayerName(c.Request.Context(), req.PlayerID, req.DisplayName)
	}

	s.afterTableMutation(tableID)
	c.JSON(http.StatusOK, gin.H{"status": "seated"})
}

func (s *GameServer) handleUnseatPlayer(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}
	seat, err := strconv.Atoi(c.Param("seat"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seat"})
		return
	}
	if err := s.manager.UnseatPlayer(tableID, seat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.afterTableMutation(tableID)
	c.JSON(http.StatusOK, gin.H{"status": "unseated"})
}

type adjustStackRequest struct {
	Seat  int   `json:"seat"`
	Delta int64 `json:"delta"`
}

func (s *GameServer) handleAdjustStack(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}
	var req adjustStackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if err := s.manager.AdjustStack(tableID, req.Seat, req.Delta); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.afterTableMutation(tableID)
	c.JSON(http.StatusOK, gin.H{"status": "adjusted"})
}

func (s *GameServer) handleStartHand(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}

	handID := s.ids.NextHandID()
	status, err := s.manager.StartHand(tableID, handID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.armShotClock(tableID)
	s.afterTableMutation(tableID)
	c.JSON(http.StatusOK, gin.H{"hand_id": handID, "finished": status.Finished})
}

type playerActionRequest struct {
	PlayerID uint64 `json:"player_id"`
	Seat     int    `json:"seat"`
	Kind     string `json:"kind"`
	Amount   uint64 `json:"amount"`
}

func (s *GameServer) handlePlayerAction(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}
	var req playerActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	kind, ok := parseActionKind(req.Kind)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action kind"})
		return
	}

	action := game.PlayerAction{
		PlayerID: req.PlayerID,
		Seat:     req.Seat,
		Kind:     kind,
		Amount:   poker.Chips(req.Amount),
	}

	status, err := s.manager.ApplyAction(tableID, action)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.onManualAction(tableID, req.PlayerID)
	s.armShotClock(tableID)
	s.afterTableMutation(tableID)
	c.JSON(http.StatusOK, gin.H{"finished": status.Finished})
}

// --- tournament endpoints ---

type blindLevelRequest struct {
	SmallBlind      uint64 `json:"small_blind"`
	BigBlind        uint64 `json:"big_blind"`
	Ante            uint64 `json:"ante"`
	AnteType        string `json:"ante_type"`
	DurationMinutes uint32 `json:"duration_minutes"`
}

type createTournamentRequest struct {
	Name                 string              `json:"name"`
	StartingStack        uint64              `json:"starting_stack"`
	MinPlayersToStart    int                 `json:"min_players_to_start"`
	MaxPlayers           int                 `json:"max_players"`
	TableSize            int                 `json:"table_size"`
	Freezeout            bool                `json:"freezeout"`
	ReentryAllowed       bool                `json:"reentry_allowed"`
	MaxEntriesPerPlayer  int                 `json:"max_entries_per_player"`
	LateRegLevel         uint32              `json:"late_reg_level"`
	ScheduledStartTs     int64               `json:"scheduled_start_ts"`
	AllowStartEarlier    bool                `json:"allow_start_earlier"`
	BreakEveryMinutes    uint32              `json:"break_every_minutes"`
	BreakDurationMinutes uint32              `json:"break_duration_minutes"`
	MaxSeatDiff          int                 `json:"max_seat_diff"`
	Blinds               []blindLevelRequest `json:"blinds"`
}

func (s *GameServer) handleCreateTournament(c *gin.Context) {
	var req createTournamentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	blinds := tournament.DefaultBlindStructure()
	if len(req.Blinds) > 0 {
		levels := make([]tournament.BlindLevel, len(req.Blinds))
		for i, l := range req.Blinds {
			levels[i] = tournament.BlindLevel{
				Level:           uint32(i + 1),
				SmallBlind:      poker.Chips(l.SmallBlind),
				BigBlind:        poker.Chips(l.BigBlind),
				Ante:            poker.Chips(l.Ante),
				AnteType:        parseAnteType(l.AnteType),
				DurationMinutes: l.DurationMinutes,
			}
		}
		blinds = tournament.BlindStructure{Levels: levels}
	}

	config := tournament.Config{
		Name:                 req.Name,
		StartingStack:        poker.Chips(req.StartingStack),
		MinPlayersToStart:    req.MinPlayersToStart,
		MaxPlayers:           req.MaxPlayers,
		TableSize:            req.TableSize,
		Freezeout:            req.Freezeout,
		ReentryAllowed:       req.ReentryAllowed,
		MaxEntriesPerPlayer:  req.MaxEntriesPerPlayer,
		LateRegLevel:         req.LateRegLevel,
		ScheduledStartTs:     req.ScheduledStartTs,
		AllowStartEarlier:    req.AllowStartEarlier,
		BreakEveryMinutes:    req.BreakEveryMinutes,
		BreakDurationMinutes: req.BreakDurationMinutes,
		Balancing: tournament.BalancingConfig{
			Enabled:     req.MaxSeatDiff > 0,
			MaxSeatDiff: req.MaxSeatDiff,
		},
		Blinds: blinds,
	}

	id, err := s.lobby.CreateTournament(config)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.persistTournament(id)
	c.JSON(http.StatusCreated, gin.H{"tournament_id": id})
}

func (s *GameServer) handleGetTournament(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	t, err := s.lobby.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

type registerPlayerRequest struct {
	PlayerID    uint64 `json:"player_id"`
	DisplayName string `json:"display_name"`
}

func (s *GameServer) handleRegisterPlayer(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	var req registerPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	err := s.lobby.With(id, func(t *tournament.Tournament) error {
		return t.RegisterPlayer(req.PlayerID)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.DisplayName != "" {
		_ = s.store.SetPlayerName(c.Request.Context(), req.PlayerID, req.DisplayName)
	}
	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"status": "registered"})
}

func (s *GameServer) handleUnregisterPlayer(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	playerID, err := strconv.ParseUint(c.Param("playerId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid player id"})
		return
	}

	err = s.lobby.With(id, func(t *tournament.Tournament) error {
		return t.UnregisterPlayer(playerID)
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"status": "unregistered"})
}

type nowRequest struct {
	NowTs int64 `json:"now_ts"`
}

func (r nowRequest) orWallClock() int64 {
	if r.NowTs != 0 {
		return r.NowTs
	}
	return time.Now().Unix()
}

func (s *GameServer) handleStartTournament(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	var req nowRequest
	_ = c.ShouldBindJSON(&req)

	var tableIDs []uint64
	err := s.lobby.With(id, func(t *tournament.Tournament) error {
		if err := t.Start(req.orWallClock()); err != nil {
			return err
		}

		// Reserve a contiguous id range for the tournament's tables.
		needed := (t.ActiveCount() + t.Config.TableSize - 1) / t.Config.TableSize
		base := s.ids.NextTableID()
		for i := 1; i < needed; i++ {
			s.ids.NextTableID()
		}

		tableIDs = t.AssignInitialSeating(base)
		tables, err := t.BuildTables()
		if err != nil {
			return err
		}
		for _, table := range tables {
			s.manager.AddTable(table)
			s.persistTable(table)
		}

		s.mu.Lock()
		for _, tid := range tableIDs {
			s.tableTournament[tid] = t.ID
			timer := timectrl.NewController(timectrl.ProfileStandard)
			timer.InitPlayers(t.ActivePlayerIDs())
			s.timers[tid] = timer
		}
		s.mu.Unlock()
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"table_ids": tableIDs})
}

func (s *GameServer) handleTimeTick(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	var req nowRequest
	_ = c.ShouldBindJSON(&req)

	var event *tournament.TickEvent
	err := s.lobby.With(id, func(t *tournament.Tournament) error {
		event = t.ApplyTimeTick(req.orWallClock())
		if event != nil && event.Kind == tournament.TickLevelAdvanced {
			s.applyBlindLevel(t)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (s *GameServer) handleAdvanceLevel(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	var req nowRequest
	_ = c.ShouldBindJSON(&req)

	var event *tournament.TickEvent
	err := s.lobby.With(id, func(t *tournament.Tournament) error {
		ev, err := t.AdvanceLevelManually(req.orWallClock())
		if err != nil {
			return err
		}
		event = ev
		if event != nil {
			s.applyBlindLevel(t)
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"event": event})
}

func (s *GameServer) handleCloseTournament(c *gin.Context) {
	id, ok := parseUintParam(c, "tournamentId")
	if !ok {
		return
	}
	err := s.lobby.With(id, func(t *tournament.Tournament) error {
		return t.Close()
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.persistTournament(id)
	c.JSON(http.StatusOK, gin.H{"status": "closed"})
}

// applyBlindLevel pushes the tournament's new blind level onto its tables
// so the next hand is dealt at the new stakes.
func (s *GameServer) applyBlindLevel(t *tournament.Tournament) {
	blinds := t.CurrentBlinds()
	s.mu.Lock()
	var tableIDs []uint64
	for tid, trnID := range s.tableTournament {
		if trnID == t.ID {
			tableIDs = append(tableIDs, tid)
		}
	}
	s.mu.Unlock()

	for _, tid := range tableIDs {
		table, err := s.manager.Table(tid)
		if err != nil {
			continue
		}
		table.Config.Stakes = game.TableStakes{
			SmallBlind: blinds.SmallBlind,
			BigBlind:   blinds.BigBlind,
			Ante:       blinds.Ante,
			AnteType:   blinds.AnteType,
		}
		s.persistTable(table)
	}
}

// HandFinished implements game.HandFinishedSink: when a tournament table
// finishes a hand, stacks flow back into the registrations, busts get their
// finishing places, and an unbalanced tournament gets a rebalance pass.
func (s *GameServer) HandFinished(summary *game.HandSummary, _ *game.HandHistory) {
	s.mu.Lock()
	tournamentID, isTournamentTable := s.tableTournament[summary.TableID]
	s.mu.Unlock()

	table, err := s.manager.Table(summary.TableID)
	if err != nil {
		return
	}
	s.persistTable(table)

	if !isTournamentTable {
		s.broadcast(summary.TableID)
		return
	}

	err = s.lobby.With(tournamentID, func(t *tournament.Tournament) error {
		busted := t.SyncStacksFromTable(table)
		for _, playerID := range busted {
			if err := t.BustPlayer(playerID); err != nil {
				s.log.Warnf("bust player %d: %v", playerID, err)
			}
		}

		if t.Status != tournament.StatusFinished && !t.IsBalanced() {
			plan := t.ComputeRebalancePlan()
			t.ApplyRebalancePlan(plan)
			for _, move := range plan.Moves {
				s.log.Infof("rebalance: player %d moves table %d -> %d",
					move.PlayerID, move.FromTable, move.ToTable)
			}
		}
		return nil
	})
	if err != nil {
		s.log.Warnf("tournament sync after hand %d: %v", summary.HandID, err)
	}

	s.persistTournament(tournamentID)
	s.broadcast(summary.TableID)
}

// --- shot clock ---

// armShotClock starts or clears the turn timer after a command
func (s *GameServer) armShotClock(tableID uint64) {
	s.mu.Lock()
	timer, ok := s.timers[tableID]
	if !ok {
		timer = timectrl.NewController(timectrl.ProfileStandard)
		s.timers[tableID] = timer
	}
	s.mu.Unlock()

	seat := s.manager.CurrentActorSeat(tableID)
	if seat < 0 {
		timer.ClearTurn()
		s.mu.Lock()
		delete(s.timedSeat, tableID)
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	previous, had := s.timedSeat[tableID]
	s.timedSeat[tableID] = seat
	s.mu.Unlock()
	if had && previous == seat {
		return
	}

	table, err := s.manager.Table(tableID)
	if err != nil || seat >= len(table.Seats) || table.Seats[seat] == nil {
		return
	}
	timer.StartPlayerTurn(table.Seats[seat].PlayerID)
}

func (s *GameServer) onManualAction(tableID uint64, playerID uint64) {
	s.mu.Lock()
	timer, ok := s.timers[tableID]
	s.mu.Unlock()
	if ok {
		timer.OnManualAction(playerID)
	}
}

// runShotClock drives every table's turn timer once per second
func (s *GameServer) runShotClock(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tickShotClocks()
		}
	}
}

func (s *GameServer) tickShotClocks() {
	s.mu.Lock()
	tables := make(map[uint64]*timectrl.Controller, len(s.timers))
	for tid, timer := range s.timers {
		tables[tid] = timer
	}
	s.mu.Unlock()

	for tableID, timer := range tables {
		decision := timer.OnTimePassed(1)
		if decision.Action != timectrl.AutoCheckOrFold {
			continue
		}
		s.forceAutoAction(tableID, decision.PlayerID)
	}
}

// forceAutoAction submits check when nothing is owed, fold otherwise
func (s *GameServer) forceAutoAction(tableID uint64, playerID uint64) {
	seat := s.manager.CurrentActorSeat(tableID)
	if seat < 0 {
		return
	}

	toCall, err := s.manager.ToCallFor(tableID, seat)
	if err != nil {
		return
	}
	kind := game.ActionCheck
	if !toCall.IsZero() {
		kind = game.ActionFold
	}

	if _, err := s.manager.ApplyAction(tableID, game.PlayerAction{
		PlayerID: playerID,
		Seat:     seat,
		Kind:     kind,
	}); err != nil {
		s.log.Warnf("auto action on table %d failed: %v", tableID, err)
		return
	}

	s.log.Infof("player %d timed out on table %d, forced %s", playerID, tableID, kind)
	s.armShotClock(tableID)
	s.afterTableMutation(tableID)
}

// --- websocket state stream ---

func (s *GameServer) handleWebSocket(c *gin.Context) {
	tableID, ok := parseUintParam(c, "tableId")
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warnf("websocket upgrade error: %v", err)
		return
	}

	s.mu.Lock()
	s.subscribers[tableID] = append(s.subscribers[tableID], conn)
	s.mu.Unlock()

	if view, err := s.manager.View(tableID, 0, s.resolveName); err == nil {
		_ = conn.WriteJSON(view)
	}

	// Reader loop only detects disconnects; clients are read-only here.
	go func() {
		defer s.dropSubscriber(tableID, conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *GameServer) dropSubscriber(tableID uint64, conn *websocket.Conn) {
	conn.Close()
	s.mu.Lock()
	defer s.mu.Unlock()
	conns := s.subscribers[tableID]
	for i, c := range conns {
		if c == conn {
			s.subscribers[tableID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
}

// broadcast pushes the public table view to every subscriber
func (s *GameServer) broadcast(tableID uint64) {
	view, err := s.manager.View(tableID, 0, s.resolveName)
	if err != nil {
		return
	}

	s.mu.Lock()
	conns := append([]*websocket.Conn(nil), s.subscribers[tableID]...)
	s.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(view); err != nil {
			s.dropSubscriber(tableID, conn)
		}
	}
}

// afterTableMutation persists and broadcasts a table's new state
func (s *GameServer) afterTableMutation(tableID uint64) {
	if table, err := s.manager.Table(tableID); err == nil {
		s.persistTable(table)
	}
	if snapshot := s.manager.SnapshotHand(tableID); snapshot != nil {
		_ = s.store.SaveActiveHand(context.Background(), tableID, snapshot)
	} else {
		_ = s.store.SaveActiveHand(context.Background(), tableID, nil)
	}
	s.broadcast(tableID)
}

func (s *GameServer) persistTable(table *game.Table) {
	if err := s.store.SaveTable(context.Background(), table); err != nil {
		s.log.Warnf("persist table %d: %v", table.ID, err)
	}
}

func (s *GameServer) persistTournament(id uint64) {
	t, err := s.lobby.Get(id)
	if err != nil {
		return
	}
	if err := s.store.SaveTournament(context.Background(), t); err != nil {
		s.log.Warnf("persist tournament %d: %v", id, err)
	}
}

func (s *GameServer) resolveName(playerID uint64) string {
	name, err := s.store.PlayerName(context.Background(), playerID)
	if err != nil || name == "" {
		return strconv.FormatUint(playerID, 10)
	}
	return name
}

// --- helpers ---

func parseAnteType(raw string) game.AnteType {
	switch raw {
	case "classic":
		return game.AnteClassic
	case "big_blind":
		return game.AnteBigBlind
	default:
		return game.AnteNone
	}
}

func parseActionKind(raw string) (game.ActionKind, bool) {
	switch raw {
	case "fold":
		return game.ActionFold, true
	case "check":
		return game.ActionCheck, true
	case "call":
		return game.ActionCall, true
	case "bet":
		return game.ActionBet, true
	case "raise":
		return game.ActionRaise, true
	case "all_in":
		return game.ActionAllIn, true
	default:
		return game.ActionFold, false
	}
}

func parseUintParam(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return value, true
}

func parseUintQuery(c *gin.Context, name string) uint64 {
	value, _ := strconv.ParseUint(c.Query(name), 10, 64)
	return value
}
