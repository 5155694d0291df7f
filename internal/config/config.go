package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Table configures one blackjack table and the server hosting it.
type Table struct {
	MaxPlayers   int    `json:"max_players"`
	HouseEnabled bool   `json:"house_enabled"`
	HouseStandOn int    `json:"house_stand_on"`
	// Seed fixes the shuffle order. Zero seeds from the clock.
	Seed         int64  `json:"seed"`
	ListenAddr   string `json:"listen_addr"`
	// TicketSecret enables signed seat tickets on the WebSocket endpoint.
	TicketSecret string `json:"ticket_secret"`
	TableView    bool   `json:"table_view"`
	SendBuffer   int    `json:"send_buffer"`
}

// Defaults returns the configuration used when no file is given.
func Defaults() Table {
	return Table{
		MaxPlayers:   7,
		HouseEnabled: true,
		HouseStandOn: 17,
		ListenAddr:   ":8080",
		SendBuffer:   32,
	}
}

var (
	cfg      *Table
	loadOnce sync.Once
	loadErr  error
)

// LoadTable loads the table configuration from the given path.
func LoadTable(path string) error {
	loadOnce.Do(func() {
		data, err := os.ReadFile(path)
		if err != nil {
			loadErr = fmt.Errorf("failed to read table config: %w", err)
			return
		}
		t, err := Parse(data)
		if err != nil {
			loadErr = err
			return
		}
		cfg = &t
	})
	return loadErr
}

// Get returns the loaded configuration, or the defaults when nothing was loaded.
func Get() Table {
	if cfg == nil {
		return Defaults()
	}
	return *cfg
}

// Parse decodes a JSON document over the defaults, so omitted keys keep
// their default values.
func Parse(data []byte) (Table, error) {
	t := Defaults()
	if err := json.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("failed to unmarshal table config: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

func (t Table) Validate() error {
	if t.MaxPlayers < 1 {
		return fmt.Errorf("max_players must be positive, got %d", t.MaxPlayers)
	}
	if t.HouseStandOn < 2 || t.HouseStandOn > 21 {
		return fmt.Errorf("house_stand_on must be within 2..21, got %d", t.HouseStandOn)
	}
	if t.SendBuffer < 1 {
		return fmt.Errorf("send_buffer must be positive, got %d", t.SendBuffer)
	}
	return nil
}

// EnvPrefix marks the environment keys ApplyEnv understands, e.g.
// blackjack_max_players.
const EnvPrefix = "blackjack_"

// ApplyEnv overrides fields from an environment map keyed by EnvPrefix plus
// the JSON field name. Keys are matched case-insensitively.
func ApplyEnv(t Table, env map[string]string) (Table, error) {
	for key, raw := range env {
		k := strings.ToLower(key)
		if !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		field := strings.TrimPrefix(k, EnvPrefix)

		var err error
		switch field {
		case "max_players":
			t.MaxPlayers, err = strconv.Atoi(raw)
		case "house_enabled":
			t.HouseEnabled, err = strconv.ParseBool(raw)
		case "house_stand_on":
			t.HouseStandOn, err = strconv.Atoi(raw)
		case "seed":
			t.Seed, err = strconv.ParseInt(raw, 10, 64)
		case "listen_addr":
			t.ListenAddr = raw
		case "ticket_secret":
			t.TicketSecret = raw
		case "table_view":
			t.TableView, err = strconv.ParseBool(raw)
		case "send_buffer":
			t.SendBuffer, err = strconv.Atoi(raw)
		default:
			continue
		}
		if err != nil {
			return t, fmt.Errorf("env %s: %w", key, err)
		}
	}
	return t, t.Validate()
}

// Environ splits os.Environ style KEY=VALUE pairs into a map.
func Environ(pairs []string) map[string]string {
	env := make(map[string]string, len(pairs))
	for _, kv := range pairs {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
