package discord

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"featherrank/internal/application"
	"featherrank/internal/models"
	"featherrank/internal/rules"

	"github.com/bwmarrin/discordgo"
)

// reportSession holds one reporter's in-flight score entry. The rosters are
// fixed by the slash command; the select menus only fill in the set scores.
type reportSession struct {
	guildID  string
	mode     models.Mode
	teamA    []string
	teamB    []string
	names    map[string]string
	reporter string
	target   int
	cap      int
	choices  map[int]models.SetScore
	created  time.Time
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*reportSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*reportSession)}
}

func (st *sessionStore) put(userID string, sess *reportSession) {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess.created = time.Now()
	st.sessions[userID] = sess
}

func (st *sessionStore) get(userID string) *reportSession {
	st.mu.Lock()
	defer st.mu.Unlock()
	sess, ok := st.sessions[userID]
	if !ok {
		return nil
	}
	if time.Since(sess.created) > sessionTTLMinutes*time.Minute {
		delete(st.sessions, userID)
		return nil
	}
	return sess
}

func (st *sessionStore) drop(userID string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, userID)
}

// standardScoreOptions lists the regulation finishes for one set: the winner
// on target points, the loser anywhere short of deuce range. The last option
// pages over to the deuce scores.
func standardScoreOptions(setIdx, target int, chosen *models.SetScore) []discordgo.SelectMenuOption {
	var opts []discordgo.SelectMenuOption
	add := func(a, b int) {
		if len(opts) >= 24 {
			return
		}
		value := fmt.Sprintf("%d:%d", a, b)
		opts = append(opts, discordgo.SelectMenuOption{
			Label:   fmt.Sprintf("Set %d: %d-%d", setIdx, a, b),
			Value:   value,
			Default: chosen != nil && chosen.A == a && chosen.B == b,
		})
	}
	for x := 0; x < target-10; x++ {
		add(target, x)
	}
	for x := 0; x < target-10; x++ {
		add(x, target)
	}
	opts = append(opts, discordgo.SelectMenuOption{
		Label: "More (deuce & high scores)...",
		Value: deuceValue,
	})
	return opts
}

// deuceScoreOptions lists the extended finishes from target+1 up to the cap,
// each exactly two apart except at the cap itself.
func deuceScoreOptions(setIdx, target, cap int) []discordgo.SelectMenuOption {
	var opts []discordgo.SelectMenuOption
	add := func(a, b int) {
		if len(opts) >= 25 {
			return
		}
		opts = append(opts, discordgo.SelectMenuOption{
			Label: fmt.Sprintf("Set %d: %d-%d", setIdx, a, b),
			Value: fmt.Sprintf("%d:%d", a, b),
		})
	}
	for m := target + 1; m <= cap; m++ {
		margin := 2
		if m == cap {
			margin = 1
		}
		add(m, m-margin)
		add(m-margin, m)
	}
	return opts
}

func (sess *reportSession) standardComponents() []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, 4)
	for setIdx := 1; setIdx <= 3; setIdx++ {
		var chosen *models.SetScore
		if c, ok := sess.choices[setIdx]; ok {
			chosen = &c
		}
		rows = append(rows, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    fmt.Sprintf("%s:%d", customIDSet, setIdx),
					Placeholder: fmt.Sprintf("Set %d score", setIdx),
					Options:     standardScoreOptions(setIdx, sess.target, chosen),
				},
			},
		})
	}

	_, hasFirst := sess.choices[1]
	_, hasSecond := sess.choices[2]
	rows = append(rows, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Submit",
				Style:    discordgo.SuccessButton,
				CustomID: customIDSubmit,
				Disabled: !(hasFirst && hasSecond),
			},
		},
	})
	return rows
}

func (sess *reportSession) deuceComponents(setIdx int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					CustomID:    fmt.Sprintf("%s:%d", customIDDeuce, setIdx),
					Placeholder: fmt.Sprintf("Set %d deuce score", setIdx),
					Options:     deuceScoreOptions(setIdx, sess.target, sess.cap),
				},
			},
		},
	}
}

func (sess *reportSession) orderedSets() []models.SetScore {
	var sets []models.SetScore
	for setIdx := 1; setIdx <= 3; setIdx++ {
		if c, ok := sess.choices[setIdx]; ok {
			sets = append(sets, c)
		}
	}
	return sets
}

func (sess *reportSession) prompt() string {
	return fmt.Sprintf("Reporting a %s match to %d: %s vs %s. Pick the score of each set, then submit.",
		sess.mode, sess.target, mentionAll(sess.teamA), mentionAll(sess.teamB))
}

// onComponent routes score view interactions back to the reporter's session.
func (b *Bot) onComponent(s *discordgo.Session, i *discordgo.InteractionCreate) {
	userID := interactionUser(i.Interaction)
	sess := b.sessions.get(userID)
	if sess == nil {
		b.respondMessage(s, i.Interaction, "This score entry expired. Run the match command again.", true)
		return
	}

	data := i.MessageComponentData()
	parts := strings.SplitN(data.CustomID, ":", 2)

	switch parts[0] {
	case customIDSet:
		setIdx, _ := strconv.Atoi(parts[1])
		if len(data.Values) == 1 && data.Values[0] == deuceValue {
			b.updateComponents(s, i.Interaction, sess.prompt(), sess.deuceComponents(setIdx))
			return
		}
		b.storeChoice(sess, setIdx, data.Values)
		b.updateComponents(s, i.Interaction, sess.prompt(), sess.standardComponents())

	case customIDDeuce:
		setIdx, _ := strconv.Atoi(parts[1])
		b.storeChoice(sess, setIdx, data.Values)
		b.updateComponents(s, i.Interaction, sess.prompt(), sess.standardComponents())

	case customIDSubmit:
		b.submitSession(s, i.Interaction, userID, sess)
	}
}

func (b *Bot) storeChoice(sess *reportSession, setIdx int, values []string) {
	if len(values) != 1 {
		return
	}
	ab := strings.SplitN(values[0], ":", 2)
	if len(ab) != 2 {
		return
	}
	a, errA := strconv.Atoi(ab[0])
	sc, errB := strconv.Atoi(ab[1])
	if errA != nil || errB != nil {
		return
	}
	sess.choices[setIdx] = models.SetScore{A: a, B: sc}
}

func (b *Bot) submitSession(s *discordgo.Session, i *discordgo.Interaction, userID string, sess *reportSession) {
	matchID, err := b.services.Match.SubmitMatch(application.SubmitRequest{
		GuildID:      sess.guildID,
		Mode:         sess.mode,
		TeamA:        sess.teamA,
		TeamB:        sess.teamB,
		Names:        sess.names,
		Sets:         sess.orderedSets(),
		Reporter:     sess.reporter,
		TargetPoints: sess.target,
	})
	if err != nil {
		// Keep the session so the reporter can fix the third set and retry.
		b.updateComponents(s, i, "That result does not score: "+err.Error(), sess.standardComponents())
		return
	}

	b.sessions.drop(userID)
	b.updateComponents(s, i,
		fmt.Sprintf("Match **#%d** recorded as pending. The other players have been asked to verify.", matchID),
		[]discordgo.MessageComponent{})
}

func (b *Bot) updateComponents(s *discordgo.Session, i *discordgo.Interaction, content string, components []discordgo.MessageComponent) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: components,
		},
	})
	if err != nil {
		b.logger.Error("component update failed: %v", err)
	}
}

func newReportSession(guildID string, mode models.Mode, teamA, teamB []string, names map[string]string, reporter string, target int) *reportSession {
	return &reportSession{
		guildID:  guildID,
		mode:     mode,
		teamA:    teamA,
		teamB:    teamB,
		names:    names,
		reporter: reporter,
		target:   target,
		cap:      rules.DeriveCap(target),
		choices:  make(map[int]models.SetScore),
	}
}
