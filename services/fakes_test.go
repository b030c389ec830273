package services

import (
	"context"
	"encoding/json"

	"github.com/82deutschmark/Disavowed/model"
)

// fakeStore is an in-memory GameStore. Accessors copy values on the way in
// and out so stored state can only change through Create/Save calls, which
// makes Transaction rollback a plain map snapshot.
type fakeStore struct {
	users        map[string]*model.User
	progress     map[string]*model.PlayerProgress
	characters   map[string]*model.Character
	characterIDs []string
	missions     map[string]*model.Mission
	stories      map[string]*model.StoryGeneration
	nodes        map[string]*model.StoryNode
	choices      map[string]*model.StoryChoice
	choiceIDs    []string
	transactions []model.Transaction
	scenes       []model.SceneImage
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:      map[string]*model.User{},
		progress:   map[string]*model.PlayerProgress{},
		characters: map[string]*model.Character{},
		missions:   map[string]*model.Mission{},
		stories:    map[string]*model.StoryGeneration{},
		nodes:      map[string]*model.StoryNode{},
		choices:    map[string]*model.StoryChoice{},
	}
}

func deepCopy[T any](v *T) *T {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	out := new(T)
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
	return out
}

type fakeSnapshot struct {
	users        map[string]*model.User
	progress     map[string]*model.PlayerProgress
	characters   map[string]*model.Character
	characterIDs []string
	missions     map[string]*model.Mission
	stories      map[string]*model.StoryGeneration
	nodes        map[string]*model.StoryNode
	choices      map[string]*model.StoryChoice
	choiceIDs    []string
	transactions []model.Transaction
	scenes       []model.SceneImage
}

func copyMap[T any](m map[string]*T) map[string]*T {
	out := make(map[string]*T, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *fakeStore) snapshot() fakeSnapshot {
	return fakeSnapshot{
		users:        copyMap(s.users),
		progress:     copyMap(s.progress),
		characters:   copyMap(s.characters),
		characterIDs: append([]string(nil), s.characterIDs...),
		missions:     copyMap(s.missions),
		stories:      copyMap(s.stories),
		nodes:        copyMap(s.nodes),
		choices:      copyMap(s.choices),
		choiceIDs:    append([]string(nil), s.choiceIDs...),
		transactions: append([]model.Transaction(nil), s.transactions...),
		scenes:       append([]model.SceneImage(nil), s.scenes...),
	}
}

func (s *fakeStore) restore(snap fakeSnapshot) {
	s.users = snap.users
	s.progress = snap.progress
	s.characters = snap.characters
	s.characterIDs = snap.characterIDs
	s.missions = snap.missions
	s.stories = snap.stories
	s.nodes = snap.nodes
	s.choices = snap.choices
	s.choiceIDs = snap.choiceIDs
	s.transactions = snap.transactions
	s.scenes = snap.scenes
}

// Transaction rolls the whole store back when the callback errors, matching
// the all-or-nothing contract of the postgres implementation.
func (s *fakeStore) Transaction(fn func(tx GameStore) error) error {
	snap := s.snapshot()
	if err := fn(s); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// User carries its password hash in a field the JSON copier drops, so users
// are copied by value instead.
func copyUser(u *model.User) *model.User {
	c := *u
	return &c
}

func (s *fakeStore) GetUserByID(id string) (*model.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyUser(u), nil
}

func (s *fakeStore) GetUserByEmailOrUsername(emailOrUsername string) (*model.User, error) {
	for _, u := range s.users {
		if u.Email == emailOrUsername || u.Username == emailOrUsername {
			return copyUser(u), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) CreateUser(user *model.User) error {
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *fakeStore) SaveUser(user *model.User) error {
	s.users[user.ID] = copyUser(user)
	return nil
}

func (s *fakeStore) GetProgressByPlayerID(playerID string) (*model.PlayerProgress, error) {
	for _, p := range s.progress {
		if p.PlayerID == playerID {
			return deepCopy(p), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) GetProgressByUserID(userID string) (*model.PlayerProgress, error) {
	for _, p := range s.progress {
		if p.UserID != nil && *p.UserID == userID {
			return deepCopy(p), nil
		}
	}
	return nil, ErrNotFound
}

func (s *fakeStore) CreateProgress(progress *model.PlayerProgress) error {
	s.progress[progress.ID] = deepCopy(progress)
	return nil
}

func (s *fakeStore) SaveProgress(progress *model.PlayerProgress) error {
	s.progress[progress.ID] = deepCopy(progress)
	return nil
}

func (s *fakeStore) DeleteProgress(id string) error {
	delete(s.progress, id)
	return nil
}

func (s *fakeStore) GetCharacter(id string) (*model.Character, error) {
	c, ok := s.characters[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(c), nil
}

func (s *fakeStore) ListCharacters() ([]model.Character, error) {
	out := make([]model.Character, 0, len(s.characterIDs))
	for _, id := range s.characterIDs {
		out = append(out, *deepCopy(s.characters[id]))
	}
	return out, nil
}

func (s *fakeStore) RandomCharacters(limit int) ([]model.Character, error) {
	all, _ := s.ListCharacters()
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *fakeStore) CreateCharacter(character *model.Character) error {
	if _, ok := s.characters[character.ID]; !ok {
		s.characterIDs = append(s.characterIDs, character.ID)
	}
	s.characters[character.ID] = deepCopy(character)
	return nil
}

func (s *fakeStore) GetMission(id string) (*model.Mission, error) {
	m, ok := s.missions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(m), nil
}

func (s *fakeStore) CreateMission(mission *model.Mission) error {
	s.missions[mission.ID] = deepCopy(mission)
	return nil
}

func (s *fakeStore) SaveMission(mission *model.Mission) error {
	s.missions[mission.ID] = deepCopy(mission)
	return nil
}

func (s *fakeStore) CreateStory(story *model.StoryGeneration) error {
	s.stories[story.ID] = deepCopy(story)
	return nil
}

func (s *fakeStore) GetStory(id string) (*model.StoryGeneration, error) {
	st, ok := s.stories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(st), nil
}

func (s *fakeStore) GetNode(id string) (*model.StoryNode, error) {
	n, ok := s.nodes[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(n), nil
}

func (s *fakeStore) CreateNode(node *model.StoryNode) error {
	s.nodes[node.ID] = deepCopy(node)
	return nil
}

func (s *fakeStore) SaveNode(node *model.StoryNode) error {
	s.nodes[node.ID] = deepCopy(node)
	return nil
}

func (s *fakeStore) GetChoice(id string) (*model.StoryChoice, error) {
	c, ok := s.choices[id]
	if !ok {
		return nil, ErrNotFound
	}
	return deepCopy(c), nil
}

func (s *fakeStore) GetChoicesByNode(nodeID string) ([]model.StoryChoice, error) {
	var out []model.StoryChoice
	for _, id := range s.choiceIDs {
		if c := s.choices[id]; c.NodeID == nodeID {
			out = append(out, *deepCopy(c))
		}
	}
	return out, nil
}

func (s *fakeStore) CreateChoice(choice *model.StoryChoice) error {
	if _, ok := s.choices[choice.ID]; !ok {
		s.choiceIDs = append(s.choiceIDs, choice.ID)
	}
	s.choices[choice.ID] = deepCopy(choice)
	return nil
}

func (s *fakeStore) SaveChoice(choice *model.StoryChoice) error {
	if _, ok := s.choices[choice.ID]; !ok {
		s.choiceIDs = append(s.choiceIDs, choice.ID)
	}
	s.choices[choice.ID] = deepCopy(choice)
	return nil
}

func (s *fakeStore) CreateTransaction(transaction *model.Transaction) error {
	s.transactions = append(s.transactions, *deepCopy(transaction))
	return nil
}

func (s *fakeStore) ListTransactions(playerID string) ([]model.Transaction, error) {
	var out []model.Transaction
	for i := len(s.transactions) - 1; i >= 0; i-- {
		if s.transactions[i].PlayerID == playerID {
			out = append(out, s.transactions[i])
		}
	}
	return out, nil
}

func (s *fakeStore) CreateSceneImage(scene *model.SceneImage) error {
	s.scenes = append(s.scenes, *deepCopy(scene))
	return nil
}

func (s *fakeStore) RandomSceneImage() (*model.SceneImage, error) {
	if len(s.scenes) == 0 {
		return nil, ErrNotFound
	}
	return deepCopy(&s.scenes[0]), nil
}

func (s *fakeStore) playerTransactions(playerID string) []model.Transaction {
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.PlayerID == playerID {
			out = append(out, tx)
		}
	}
	return out
}

// fakeGateway is a scripted ContentGateway. Each method returns its canned
// result or error and counts how often it was called.
type fakeGateway struct {
	fullMission    *FullMissionResult
	fullMissionErr error

	brief    *MissionBriefResult
	briefErr error

	opening    *OpeningResult
	openingErr error

	choices    *ChoicesResult
	choicesErr error

	continuation    *NarrativeResult
	continuationErr error

	custom    *NarrativeResult
	customErr error

	fullMissionCalls  int
	briefCalls        int
	openingCalls      int
	choicesCalls      int
	continuationCalls int
	customCalls       int
}

func (g *fakeGateway) GenerateFullMission(ctx context.Context, req FullMissionRequest) (*FullMissionResult, error) {
	g.fullMissionCalls++
	if g.fullMissionErr != nil {
		return nil, g.fullMissionErr
	}
	return g.fullMission, nil
}

func (g *fakeGateway) GenerateMissionBrief(ctx context.Context, giver CharacterContext) (*MissionBriefResult, error) {
	g.briefCalls++
	if g.briefErr != nil {
		return nil, g.briefErr
	}
	return g.brief, nil
}

func (g *fakeGateway) GenerateOpening(ctx context.Context, mission *model.Mission, giver *model.Character) (*OpeningResult, error) {
	g.openingCalls++
	if g.openingErr != nil {
		return nil, g.openingErr
	}
	return g.opening, nil
}

func (g *fakeGateway) GenerateChoices(ctx context.Context, req ChoicesRequest) (*ChoicesResult, error) {
	g.choicesCalls++
	if g.choicesErr != nil {
		return nil, g.choicesErr
	}
	return g.choices, nil
}

func (g *fakeGateway) GenerateContinuation(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error) {
	g.continuationCalls++
	if g.continuationErr != nil {
		return nil, g.continuationErr
	}
	return g.continuation, nil
}

func (g *fakeGateway) GenerateCustomResponse(ctx context.Context, req ContinuationRequest) (*NarrativeResult, error) {
	g.customCalls++
	if g.customErr != nil {
		return nil, g.customErr
	}
	return g.custom, nil
}
