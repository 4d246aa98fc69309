package equip

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/zachrip/valpal/internal/random"
	"github.com/zachrip/valpal/internal/riot"
	"github.com/zachrip/valpal/internal/selector"
	"github.com/zachrip/valpal/internal/session"
	"github.com/zachrip/valpal/pkg/types"
)

type fakeRemote struct {
	mu      sync.Mutex
	current string
	ents    riot.Entitlements
	getErr  error
	putErr  error
	puts    []riot.Loadout
	creds   riot.Credentials
}

func (f *fakeRemote) factory(creds riot.Credentials) Remote {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creds = creds
	return f
}

func (f *fakeRemote) GetLoadout(context.Context) (*riot.Loadout, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	var l riot.Loadout
	if err := json.Unmarshal([]byte(f.current), &l); err != nil {
		return nil, err
	}
	return &l, nil
}

func (f *fakeRemote) GetEntitlements(context.Context) (riot.Entitlements, error) {
	return f.ents, nil
}

func (f *fakeRemote) PutLoadout(_ context.Context, l *riot.Loadout) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	f.puts = append(f.puts, *l)
	return nil
}

type staticConfigs struct {
	cfg types.UserConfig
	err error
}

func (s staticConfigs) GetUserConfig(context.Context, string) (types.UserConfig, error) {
	return s.cfg, s.err
}

type notification struct{ title, text string }

type notifications struct {
	mu  sync.Mutex
	got []notification
}

func (n *notifications) Notify(title, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.got = append(n.got, notification{title, text})
}

var testSession = &session.Session{
	AccessToken:       "access",
	EntitlementsToken: "ent",
	UserID:            "user-1",
	Region:            riot.RegionEurope,
	Shard:             riot.ShardEurope,
}

func newEquipper(t *testing.T, remote *fakeRemote, cfg types.UserConfig, n *notifications) *Equipper {
	t.Helper()
	log := zaptest.NewLogger(t)
	rng := random.NewSeeded(5, 6)
	return New(Options{
		Remote:     remote.factory,
		Configs:    staticConfigs{cfg: cfg},
		Selector:   selector.New(rng, log),
		Translator: NewTranslator(testCatalog(), rng, log),
		Notifier:   n,
		Logger:     log,
	})
}

func userConfig() types.UserConfig {
	return types.UserConfig{
		Version: types.ConfigVersion,
		Loadouts: []types.Loadout{
			{
				ID: "jett-only", Name: "Jett", Enabled: true, AgentIDs: []string{"jett"},
				PlayerCardIDs: []string{"card-jett"},
			},
			{ID: "off", Name: "Disabled", Enabled: false, PlayerCardIDs: []string{"card-off"}},
		},
	}
}

func TestEquipForAgent(t *testing.T) {
	remote := &fakeRemote{current: currentLoadoutJSON}
	n := &notifications{}
	e := newEquipper(t, remote, userConfig(), n)

	got, err := e.Equip(context.Background(), testSession, "jett")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "jett-only", got.ID)

	require.Len(t, remote.puts, 1)
	assert.Equal(t, "card-jett", remote.puts[0].Identity.PlayerCardID)
	assert.Equal(t, "user-1", remote.creds.UserID)
	assert.Equal(t, riot.ShardEurope, remote.creds.Shard)
	assert.Equal(t, []notification{{"Equipped Loadout", "Jett"}}, n.got)
}

func TestEquipNothingEnabled(t *testing.T) {
	remote := &fakeRemote{current: currentLoadoutJSON}
	n := &notifications{}
	cfg := types.UserConfig{Loadouts: []types.Loadout{{ID: "off", Enabled: false}}}
	e := newEquipper(t, remote, cfg, n)

	got, err := e.Equip(context.Background(), testSession, "")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Empty(t, remote.puts)
	assert.Empty(t, n.got)
}

func TestEquipByID(t *testing.T) {
	remote := &fakeRemote{current: currentLoadoutJSON}
	e := newEquipper(t, remote, userConfig(), &notifications{})

	got, err := e.EquipByID(context.Background(), testSession, "off")
	require.NoError(t, err)
	assert.Equal(t, "off", got.ID)
	require.Len(t, remote.puts, 1)
	assert.Equal(t, "card-off", remote.puts[0].Identity.PlayerCardID)

	_, err = e.EquipByID(context.Background(), testSession, "missing")
	require.ErrorIs(t, err, ErrUnknownLoadout)
}

func TestEquipFailuresAreReported(t *testing.T) {
	tests := []struct {
		name   string
		remote *fakeRemote
	}{
		{name: "read fails", remote: &fakeRemote{getErr: errors.New("timeout")}},
		{name: "write fails", remote: &fakeRemote{current: currentLoadoutJSON, putErr: &riot.StatusError{Method: "PUT", StatusCode: 500}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := &notifications{}
			e := newEquipper(t, tt.remote, userConfig(), n)

			err := e.EquipLoadout(context.Background(), testSession, userConfig().Loadouts[0])
			require.Error(t, err)
			assert.Empty(t, tt.remote.puts)
			require.Len(t, n.got, 1)
			assert.Equal(t, "Equip Failed", n.got[0].title)
		})
	}
}

func TestEquipConfigError(t *testing.T) {
	log := zaptest.NewLogger(t)
	e := New(Options{
		Remote:   (&fakeRemote{}).factory,
		Configs:  staticConfigs{err: errors.New("disk gone")},
		Selector: selector.New(random.NewSequence(), log),
		Logger:   log,
	})
	_, err := e.Equip(context.Background(), testSession, "")
	require.Error(t, err)
}
