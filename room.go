package main

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

type gameState string

const (
	stateLobby   gameState = "lobby"
	statePlaying gameState = "playing"
	stateEnded   gameState = "ended"
)

type gamePhase string

const (
	phaseLobby          gamePhase = "lobby"
	phaseCategorySelect gamePhase = "category-select"
	phaseShowQuestion   gamePhase = "show-question"
	phaseLie            gamePhase = "lie"
	phaseVote           gamePhase = "vote"
	phaseReveal         gamePhase = "reveal"
	phaseScoreboard     gamePhase = "scoreboard"
	phaseGameOver       gamePhase = "game-over"
)

const (
	minPlayers = 2
	maxPlayers = 8
	maxNameLen = 16
	maxLieLen  = 80

	maxRounds     = 3
	categoryCount = 3
	minAnswerList = 6

	truthPoints   = 1000
	foolPoints    = 500
	decoyPenalty  = 500
	revealPerSlot = 2 * time.Second
	revealMinimum = 6 * time.Second

	// Answer-slot author for machine decoys. Player names are trimmed
	// free text, but this can never collide with one since names are
	// length-limited and this marker is matched exactly.
	houseAuthor = "*house*"
)

// questionQuota[round-1] is how many questions each round runs; the round
// number doubles as the score multiplier (1x/2x/3x).
var questionQuota = [maxRounds]int{3, 3, 1}

// answerEntry is one slot of the voting list. Author is a player name for a
// lie, houseAuthor for a decoy, and empty for the truth.
type answerEntry struct {
	Text   string
	IsTrue bool
	Author string
}

// Player survives disconnects: the entry is never deleted for the lifetime
// of the room, only its session detaches.
type Player struct {
	Name    string
	Score   int
	session *session
}

// Room is one game instance. Every mutation, including timer fires, runs
// under mu, so handlers never observe a half-finished phase transition.
type Room struct {
	mu   sync.Mutex
	cfg  *Config
	bank []Question

	code  string
	state gameState
	phase gamePhase

	host    *session
	players map[string]*Player
	order   []string // join order, for stable player listings

	round          int
	questionNumber int
	pool           []Question
	current        *Question
	categories     []string
	categoryVotes  map[string]string
	lies           map[string]string
	votes          map[string]int
	answers        []answerEntry

	// At most one pending transition. The generation counter discards a
	// fire from a timer that was cancelled after its callback had
	// already been queued.
	timer    *time.Timer
	timerGen int
	deadline time.Time
	settling bool
}

func newRoom(cfg *Config, code string, bank []Question) *Room {
	return &Room{
		cfg:           cfg,
		bank:          bank,
		code:          code,
		state:         stateLobby,
		phase:         phaseLobby,
		players:       make(map[string]*Player),
		categoryVotes: make(map[string]string),
		lies:          make(map[string]string),
		votes:         make(map[string]int),
	}
}

// ---- timers ----

// schedule arms the room's single timer, cancelling any outstanding one.
// fn runs with rm.mu held.
func (rm *Room) schedule(d time.Duration, fn func()) {
	rm.timerGen++
	gen := rm.timerGen

	if rm.timer != nil {
		rm.timer.Stop()
	}
	rm.deadline = time.Now().Add(d)

	rm.timer = time.AfterFunc(d, func() {
		rm.mu.Lock()
		defer rm.mu.Unlock()

		if gen != rm.timerGen {
			return
		}
		rm.timer = nil
		fn()
	})
}

func (rm *Room) stopTimerLocked() {
	rm.timerGen++
	if rm.timer != nil {
		rm.timer.Stop()
		rm.timer = nil
	}
}

// stopTimer is used by the registry sweep before deleting a room, so a
// dangling callback can't mutate a room that no longer exists.
func (rm *Room) stopTimer() {
	rm.mu.Lock()
	defer rm.mu.Unlock()
	rm.stopTimerLocked()
}

func (rm *Room) remainingMsLocked() int64 {
	if rm.timer == nil {
		return 0
	}
	left := time.Until(rm.deadline)
	if left < 0 {
		return 0
	}
	return left.Milliseconds()
}

// ---- delivery ----

// sendLocked delivers to a single session. A full outbox means the
// consumer stopped draining, so the session is dropped rather than blocked
// on. A session that was already dropped eats the message, so callers may
// keep sending through a captured session after a drop mid-sequence.
func (rm *Room) sendLocked(c *session, msg any) {
	if c == nil {
		return
	}

	select {
	case <-c.done:
		return
	default:
	}

	select {
	case c.send <- msg:
	default:
		rm.dropLocked(c)
	}
}

func (rm *Room) dropLocked(c *session) {
	if rm.host == c {
		rm.host = nil
	}
	for _, p := range rm.players {
		if p.session == c {
			p.session = nil
		}
	}
	c.shutdown()
}

func (rm *Room) broadcastLocked(msg any) {
	rm.sendLocked(rm.host, msg)
	for _, name := range rm.order {
		if p := rm.players[name]; p.session != nil {
			rm.sendLocked(p.session, msg)
		}
	}
}

func (rm *Room) playerListLocked() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(rm.order))
	for _, name := range rm.order {
		p := rm.players[name]
		players = append(players, PlayerInfo{
			Name:      p.Name,
			Score:     p.Score,
			Connected: p.session != nil,
		})
	}
	return players
}

func (rm *Room) rankedLocked() []PlayerInfo {
	players := rm.playerListLocked()
	slices.SortStableFunc(players, func(a, b PlayerInfo) int {
		return b.Score - a.Score
	})
	return players
}

func (rm *Room) connectedLocked() []*Player {
	connected := make([]*Player, 0, len(rm.order))
	for _, name := range rm.order {
		if p := rm.players[name]; p.session != nil {
			connected = append(connected, p)
		}
	}
	return connected
}

// ---- membership ----

// AttachHost binds (or re-binds) the display connection and resyncs it.
func (rm *Room) AttachHost(c *session) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.host != nil && rm.host != c {
		rm.dropLocked(rm.host)
	}
	rm.host = c
	c.room = rm

	rm.sendLocked(c, HostJoinedMessage{
		Type:    "host-joined",
		Code:    rm.code,
		Players: rm.playerListLocked(),
		Phase:   string(rm.phase),
		State:   string(rm.state),
	})
	if rm.state == statePlaying {
		rm.resyncLocked(c, "")
	}
}

// JoinPlayer handles join-room: first use of a name creates the player,
// a later use rejoins if the previous channel is gone, and collides if it
// is still open.
func (rm *Room) JoinPlayer(c *session, name string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	name = strings.TrimSpace(name)
	switch {
	case name == "":
		rm.sendLocked(c, ErrorMessage{Type: "error", Message: "name required"})
		return
	case utf8.RuneCountInString(name) > maxNameLen:
		rm.sendLocked(c, ErrorMessage{Type: "error", Message: "name too long"})
		return
	}

	existing := rm.players[name]
	switch {
	case existing != nil && existing.session != nil && existing.session != c:
		rm.sendLocked(c, ErrorMessage{Type: "error", Message: "name taken"})
		return

	case existing != nil:
		existing.session = c

	default:
		if rm.state != stateLobby {
			rm.sendLocked(c, ErrorMessage{Type: "error", Message: "game already in progress"})
			return
		}
		if len(rm.players) >= maxPlayers {
			rm.sendLocked(c, ErrorMessage{Type: "error", Message: "room full"})
			return
		}
		existing = &Player{Name: name, session: c}
		rm.players[name] = existing
		rm.order = append(rm.order, name)
	}

	c.room = rm
	c.name = name

	rm.sendLocked(c, JoinedMessage{
		Type:  "joined",
		Code:  rm.code,
		Name:  name,
		Score: existing.Score,
		Phase: string(rm.phase),
	})
	rm.broadcastLocked(PlayerListMessage{Type: "player-list", Players: rm.playerListLocked()})

	if rm.state == statePlaying {
		rm.resyncLocked(c, name)
	}
}

// Detach drops the session's channel without deleting any player entry. A
// shrunken quorum may satisfy an "all in" condition, so re-check it.
func (rm *Room) Detach(c *session) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	wasMember := rm.host == c
	if rm.host == c {
		rm.host = nil
	}
	for _, p := range rm.players {
		if p.session == c {
			p.session = nil
			wasMember = true
		}
	}
	if !wasMember {
		return
	}

	rm.broadcastLocked(PlayerListMessage{Type: "player-list", Players: rm.playerListLocked()})
	rm.maybeAdvanceLocked()
}

// ---- lifecycle ----

// StartGame is honored only from the current host channel.
func (rm *Room) StartGame(c *session) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.host != c {
		return
	}
	if rm.state != stateLobby {
		rm.sendLocked(c, ErrorMessage{Type: "error", Message: "game already in progress"})
		return
	}
	if len(rm.players) < minPlayers {
		rm.sendLocked(c, ErrorMessage{Type: "error", Message: "need at least 2 players"})
		return
	}

	rm.pool = newQuestionPool(rm.bank)
	rm.state = statePlaying
	rm.round = 1
	rm.questionNumber = 0

	rm.broadcastLocked(GameStartMessage{Type: "game-start", Players: rm.playerListLocked()})
	rm.broadcastLocked(NewRoundMessage{Type: "new-round", Round: rm.round})
	rm.startCategorySelectLocked()
}

// PlayAgain resets an ended game back to the lobby, zeroing scores.
func (rm *Room) PlayAgain(c *session) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.host != c || rm.phase != phaseGameOver {
		return
	}

	rm.stopTimerLocked()
	rm.state = stateLobby
	rm.phase = phaseLobby
	rm.round = 0
	rm.questionNumber = 0
	rm.pool = nil
	rm.current = nil
	rm.categories = nil
	rm.answers = nil
	rm.categoryVotes = make(map[string]string)
	rm.lies = make(map[string]string)
	rm.votes = make(map[string]int)
	for _, p := range rm.players {
		p.Score = 0
	}

	rm.broadcastLocked(BackToLobbyMessage{Type: "back-to-lobby", Players: rm.playerListLocked()})
}

func (rm *Room) gameOverLocked() {
	rm.stopTimerLocked()
	rm.phase = phaseGameOver
	rm.state = stateEnded
	rm.current = nil
	rm.broadcastLocked(GameOverMessage{Type: "game-over", Players: rm.rankedLocked()})
}

// ---- category select ----

func (rm *Room) startCategorySelectLocked() {
	if len(rm.pool) == 0 {
		rm.gameOverLocked()
		return
	}

	rm.questionNumber++
	rm.phase = phaseCategorySelect
	rm.settling = false
	rm.current = nil
	rm.categoryVotes = make(map[string]string)
	rm.lies = make(map[string]string)
	rm.votes = make(map[string]int)
	rm.answers = nil
	rm.categories = poolCategories(rm.pool, categoryCount)

	rm.broadcastLocked(CategorySelectMessage{
		Type:           "category-select",
		Categories:     rm.categories,
		Round:          rm.round,
		QuestionNum:    rm.questionNumber,
		TotalQuestions: questionQuota[rm.round-1],
		TimeMs:         rm.cfg.categoryTime.Milliseconds(),
	})
	rm.schedule(rm.cfg.categoryTime, rm.finishCategorySelectLocked)
}

// VoteCategory records one advisory category vote per player; the first
// vote sticks.
func (rm *Room) VoteCategory(c *session, category string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.phase != phaseCategorySelect || c.name == "" {
		return
	}
	if p := rm.players[c.name]; p == nil || p.session != c {
		return
	}
	if !slices.Contains(rm.categories, category) {
		return
	}
	if _, voted := rm.categoryVotes[c.name]; voted {
		return
	}

	rm.categoryVotes[c.name] = category
	rm.maybeAdvanceLocked()
}

// finishCategorySelectLocked resolves the vote: plurality wins, ties and
// the no-votes case fall to a uniform random pick among the offered three.
func (rm *Room) finishCategorySelectLocked() {
	tally := make(map[string]int)
	for _, category := range rm.categoryVotes {
		tally[category]++
	}

	best := 0
	var leaders []string
	for _, category := range rm.categories {
		switch count := tally[category]; {
		case count > best:
			best = count
			leaders = []string{category}
		case count == best:
			leaders = append(leaders, category)
		}
	}

	chosen := leaders[rand.IntN(len(leaders))]

	q, rest, ok := takeQuestion(rm.pool, chosen)
	if !ok {
		rm.gameOverLocked()
		return
	}
	rm.current = &q
	rm.pool = rest

	rm.phase = phaseShowQuestion
	rm.settling = false
	rm.broadcastLocked(ShowQuestionMessage{
		Type:     "show-question",
		Question: q.Question,
		Category: q.Category,
		Round:    rm.round,
		TimeMs:   rm.cfg.questionTime.Milliseconds(),
	})
	rm.schedule(rm.cfg.questionTime, rm.startLiePhaseLocked)
}

// ---- lie phase ----

func (rm *Room) startLiePhaseLocked() {
	rm.phase = phaseLie
	rm.settling = false
	rm.broadcastLocked(LiePhaseMessage{
		Type:     "lie-phase",
		Question: rm.current.Question,
		TimeMs:   rm.cfg.lieTime.Milliseconds(),
	})
	rm.schedule(rm.cfg.lieTime, rm.startVotePhaseLocked)
}

// SubmitLie validates and records a player's lie. A rejection consumes no
// turn; a duplicate after acceptance is acked again but never overwrites.
func (rm *Room) SubmitLie(c *session, lie string) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.phase != phaseLie || c.name == "" {
		return
	}
	if p := rm.players[c.name]; p == nil || p.session != c {
		return
	}

	if _, done := rm.lies[c.name]; done {
		rm.sendLocked(c, LieAcceptedMessage{Type: "lie-accepted"})
		return
	}

	lie = strings.TrimSpace(lie)
	switch {
	case lie == "":
		rm.sendLocked(c, LieRejectedMessage{Type: "lie-rejected", Message: "lie cannot be empty"})
		return
	case utf8.RuneCountInString(lie) > maxLieLen:
		rm.sendLocked(c, LieRejectedMessage{Type: "lie-rejected", Message: "lie too long"})
		return
	case tooSimilar(lie, rm.current.Answer, rm.current.AlternateAnswers):
		rm.sendLocked(c, LieRejectedMessage{Type: "lie-rejected", Message: "too close to the truth, try another"})
		return
	}

	rm.lies[c.name] = lie
	rm.sendLocked(c, LieAcceptedMessage{Type: "lie-accepted"})
	rm.broadcastLocked(LieCountMessage{
		Type:  "lie-count",
		Count: len(rm.lies),
		Total: len(rm.connectedLocked()),
	})
	rm.maybeAdvanceLocked()
}

// ---- vote phase ----

func (rm *Room) startVotePhaseLocked() {
	rm.phase = phaseVote
	rm.settling = false
	rm.answers = buildAnswerList(rm.current, rm.lies)

	choices := make([]AnswerChoice, len(rm.answers))
	for i, entry := range rm.answers {
		choices[i] = AnswerChoice{ID: i, Text: entry.Text}
	}

	rm.broadcastLocked(VotePhaseMessage{
		Type:     "vote-phase",
		Question: rm.current.Question,
		Answers:  choices,
		TimeMs:   rm.cfg.voteTime.Milliseconds(),
	})
	for _, p := range rm.connectedLocked() {
		rm.sendLocked(p.session, YourChoicesMessage{
			Type:    "your-choices",
			Answers: viewAnswers(rm.answers, p.Name),
		})
	}
	rm.schedule(rm.cfg.voteTime, rm.startRevealLocked)
}

// buildAnswerList assembles the shared voting list: the truth, every
// collected lie, and enough decoys (deduplicated against texts already
// present) to reach the minimum size. The result is shuffled; slot indices
// stay stable for the whole voting phase.
func buildAnswerList(q *Question, lies map[string]string) []answerEntry {
	entries := []answerEntry{{Text: q.Answer, IsTrue: true}}

	authors := make([]string, 0, len(lies))
	for name := range lies {
		authors = append(authors, name)
	}
	slices.Sort(authors)
	for _, name := range authors {
		entries = append(entries, answerEntry{Text: lies[name], Author: name})
	}

	used := make(map[string]bool, len(entries))
	for _, entry := range entries {
		used[normalizeAnswer(entry.Text)] = true
	}
	for _, decoy := range q.Decoys {
		if len(entries) >= minAnswerList {
			break
		}
		if used[normalizeAnswer(decoy)] {
			continue
		}
		used[normalizeAnswer(decoy)] = true
		entries = append(entries, answerEntry{Text: decoy, Author: houseAuthor})
	}

	rand.Shuffle(len(entries), func(i, j int) {
		entries[i], entries[j] = entries[j], entries[i]
	})

	return entries
}

// viewAnswers is the personalized projection: every slot except the one the
// viewer authored, keeping the shared slot indices.
func viewAnswers(answers []answerEntry, viewer string) []AnswerChoice {
	choices := make([]AnswerChoice, 0, len(answers))
	for i, entry := range answers {
		if entry.Author != "" && entry.Author == viewer {
			continue
		}
		choices = append(choices, AnswerChoice{ID: i, Text: entry.Text})
	}
	return choices
}

// SubmitVote records a vote by slot index. Out-of-range targets, the
// voter's own slot, and repeat votes are all dropped without acknowledgment.
func (rm *Room) SubmitVote(c *session, answerID *int) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.phase != phaseVote || c.name == "" || answerID == nil {
		return
	}
	if p := rm.players[c.name]; p == nil || p.session != c {
		return
	}

	id := *answerID
	if id < 0 || id >= len(rm.answers) {
		return
	}
	if rm.answers[id].Author == c.name {
		return
	}
	if _, voted := rm.votes[c.name]; voted {
		return
	}

	rm.votes[c.name] = id
	rm.sendLocked(c, VoteAcceptedMessage{Type: "vote-accepted"})
	rm.broadcastLocked(VoteCountMessage{
		Type:  "vote-count",
		Count: len(rm.votes),
		Total: len(rm.connectedLocked()),
	})
	rm.maybeAdvanceLocked()
}

// ---- reveal and scoreboard ----

func (rm *Room) startRevealLocked() {
	rm.phase = phaseReveal
	rm.settling = false

	changes := scoreChanges(rm.answers, rm.votes, rm.round)
	for name, delta := range changes {
		if p := rm.players[name]; p != nil {
			p.Score += delta
		}
	}

	votersBySlot := make(map[int][]string)
	for name, id := range rm.votes {
		votersBySlot[id] = append(votersBySlot[id], name)
	}

	reveals := make([]RevealEntry, len(rm.answers))
	for i, entry := range rm.answers {
		voters := votersBySlot[i]
		slices.Sort(voters)
		if voters == nil {
			voters = []string{}
		}
		reveals[i] = RevealEntry{
			Text:   entry.Text,
			IsTrue: entry.IsTrue,
			Author: entry.Author,
			Voters: voters,
		}
	}

	rm.broadcastLocked(RevealMessage{
		Type:         "reveal",
		Reveals:      reveals,
		Truth:        rm.current.Answer,
		ScoreChanges: changes,
		Players:      rm.rankedLocked(),
	})
	rm.schedule(revealDuration(len(rm.answers)), rm.startScoreboardLocked)
}

// scoreChanges computes per-player deltas for one reveal. It only
// accumulates, so slot processing order can't affect the totals; the caller
// applies the result in one step.
func scoreChanges(answers []answerEntry, votes map[string]int, multiplier int) map[string]int {
	changes := make(map[string]int)

	voterCount := make(map[int]int)
	for voter, id := range votes {
		voterCount[id]++
		entry := answers[id]
		switch {
		case entry.IsTrue:
			changes[voter] += truthPoints * multiplier
		case entry.Author == houseAuthor:
			changes[voter] -= decoyPenalty * multiplier
		}
	}

	for id, count := range voterCount {
		author := answers[id].Author
		if author != "" && author != houseAuthor {
			changes[author] += foolPoints * multiplier * count
		}
	}

	return changes
}

// More slots means more to read out, so the reveal dwell scales with the
// list, floor-bounded.
func revealDuration(slots int) time.Duration {
	d := time.Duration(slots) * revealPerSlot
	if d < revealMinimum {
		d = revealMinimum
	}
	return d
}

func (rm *Room) startScoreboardLocked() {
	rm.phase = phaseScoreboard
	rm.broadcastLocked(ScoreboardMessage{
		Type:    "scoreboard",
		Players: rm.rankedLocked(),
		Round:   rm.round,
	})
	rm.schedule(rm.cfg.scoreboardTime, rm.advanceQuestionLocked)
}

func (rm *Room) advanceQuestionLocked() {
	if rm.questionNumber >= questionQuota[rm.round-1] {
		if rm.round >= maxRounds {
			rm.gameOverLocked()
			return
		}
		rm.round++
		rm.questionNumber = 0
		rm.broadcastLocked(NewRoundMessage{Type: "new-round", Round: rm.round})
	}
	rm.startCategorySelectLocked()
}

// ---- quorum early exit ----

// maybeAdvanceLocked fast-forwards an input phase once every connected
// player has acted, after a settle delay so displays can catch up. It runs
// after every submission and after every disconnect.
func (rm *Room) maybeAdvanceLocked() {
	if rm.settling {
		return
	}

	connected := rm.connectedLocked()
	if len(connected) == 0 {
		return
	}

	allIn := func(done func(name string) bool) bool {
		for _, p := range connected {
			if !done(p.Name) {
				return false
			}
		}
		return true
	}

	switch rm.phase {
	case phaseCategorySelect:
		if allIn(func(name string) bool { _, ok := rm.categoryVotes[name]; return ok }) {
			rm.settling = true
			rm.schedule(rm.cfg.settleDelay, rm.finishCategorySelectLocked)
		}

	case phaseLie:
		if allIn(func(name string) bool { _, ok := rm.lies[name]; return ok }) {
			rm.settling = true
			rm.broadcastLocked(AllLiesInMessage{Type: "all-lies-in"})
			rm.schedule(rm.cfg.settleDelay, rm.startVotePhaseLocked)
		}

	case phaseVote:
		if allIn(func(name string) bool { _, ok := rm.votes[name]; return ok }) {
			rm.settling = true
			rm.schedule(rm.cfg.settleDelay, rm.startRevealLocked)
		}
	}
}

// ---- resync ----

// resyncLocked brings a reconnecting session up to the current phase.
// viewer is the player name, or empty for the host display (which gets the
// full answer list rather than a personalized one).
func (rm *Room) resyncLocked(c *session, viewer string) {
	switch rm.phase {
	case phaseCategorySelect:
		rm.sendLocked(c, CategorySelectMessage{
			Type:           "category-select",
			Categories:     rm.categories,
			Round:          rm.round,
			QuestionNum:    rm.questionNumber,
			TotalQuestions: questionQuota[rm.round-1],
			TimeMs:         rm.remainingMsLocked(),
		})

	case phaseShowQuestion, phaseLie:
		rm.sendLocked(c, LiePhaseMessage{
			Type:     "lie-phase",
			Question: rm.current.Question,
			TimeMs:   rm.remainingMsLocked(),
		})

	case phaseVote:
		if viewer == "" {
			choices := make([]AnswerChoice, len(rm.answers))
			for i, entry := range rm.answers {
				choices[i] = AnswerChoice{ID: i, Text: entry.Text}
			}
			rm.sendLocked(c, VotePhaseMessage{
				Type:     "vote-phase",
				Question: rm.current.Question,
				Answers:  choices,
				TimeMs:   rm.remainingMsLocked(),
			})
		} else {
			rm.sendLocked(c, YourChoicesMessage{
				Type:    "your-choices",
				Answers: viewAnswers(rm.answers, viewer),
			})
		}

	case phaseReveal:
		// No way to replay a reveal mid-flight; park the client.
		rm.sendLocked(c, WaitMessage{Type: "wait", Message: "revealing answers"})

	case phaseScoreboard:
		rm.sendLocked(c, ScoreboardMessage{
			Type:    "scoreboard",
			Players: rm.rankedLocked(),
			Round:   rm.round,
		})
	}
}

// detachedAll reports whether nothing is connected to this room anymore;
// used by the registry sweep.
func (rm *Room) detachedAll() bool {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.host != nil {
		return false
	}
	for _, p := range rm.players {
		if p.session != nil {
			return false
		}
	}
	return true
}
