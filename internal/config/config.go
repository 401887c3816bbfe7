// Package config loads the casino's HCL configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/casino/internal/session"
	"github.com/lox/casino/internal/slots"
)

const (
	DefaultAddress     = "localhost:8080"
	DefaultLogLevel    = "info"
	DefaultDealerDelay = 800 * time.Millisecond
	DefaultSpinTime    = 2000 * time.Millisecond
	DefaultFrameTime   = 50 * time.Millisecond
)

// Config represents the complete casino configuration
type Config struct {
	Server    *ServerSettings    `hcl:"server,block"`
	Wallet    *WalletSettings    `hcl:"wallet,block"`
	Blackjack *BlackjackSettings `hcl:"blackjack,block"`
	Machines  []MachineConfig    `hcl:"machine,block"`
}

// ServerSettings contains host-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	LogLevel string `hcl:"log_level,optional"`
	Seed     int64  `hcl:"seed,optional"`
}

// WalletSettings configures new sessions' wallets
type WalletSettings struct {
	StartingBalance int `hcl:"starting_balance,optional"`
	HistorySize     int `hcl:"history_size,optional"`
}

// BlackjackSettings configures the blackjack table
type BlackjackSettings struct {
	MinStake      int   `hcl:"min_stake,optional"`
	MaxStake      int   `hcl:"max_stake,optional"`
	StakeStep     int   `hcl:"stake_step,optional"`
	DefaultStake  int   `hcl:"default_stake,optional"`
	Presets       []int `hcl:"presets,optional"`
	DealerDelayMS int   `hcl:"dealer_delay_ms,optional"`
}

// MachineConfig defines one slot machine in the lobby
type MachineConfig struct {
	ID           string          `hcl:"id,label"`
	Title        string          `hcl:"title,optional"`
	TopPrize     int             `hcl:"top_prize,optional"`
	Hot          bool            `hcl:"hot,optional"`
	MinStake     int             `hcl:"min_stake,optional"`
	MaxStake     int             `hcl:"max_stake,optional"`
	StakeStep    int             `hcl:"stake_step,optional"`
	DefaultStake int             `hcl:"default_stake,optional"`
	Presets      []int           `hcl:"presets,optional"`
	SpinMS       int             `hcl:"spin_ms,optional"`
	FrameMS      int             `hcl:"frame_ms,optional"`
	PayLines     []PayLineConfig `hcl:"pay_line,block"`
}

// PayLineConfig sets one symbol's three-of-a-kind multiplier
type PayLineConfig struct {
	Symbol     string `hcl:"symbol,label"`
	Multiplier int    `hcl:"multiplier"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from an HCL file. A missing file yields defaults.
func Load(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return Default(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server == nil {
		c.Server = &ServerSettings{}
	}
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = DefaultLogLevel
	}

	if c.Wallet == nil {
		c.Wallet = &WalletSettings{}
	}
	if c.Wallet.StartingBalance == 0 {
		c.Wallet.StartingBalance = session.DefaultStartingBalance
	}
	if c.Wallet.HistorySize == 0 {
		c.Wallet.HistorySize = session.DefaultHistorySize
	}

	if c.Blackjack == nil {
		c.Blackjack = &BlackjackSettings{}
	}
	bj := session.BlackjackLimits()
	if c.Blackjack.MinStake == 0 {
		c.Blackjack.MinStake = bj.Min
	}
	if c.Blackjack.MaxStake == 0 {
		c.Blackjack.MaxStake = bj.Max
	}
	if c.Blackjack.StakeStep == 0 {
		c.Blackjack.StakeStep = bj.Step
	}
	if c.Blackjack.DefaultStake == 0 {
		c.Blackjack.DefaultStake = max(bj.Default, c.Blackjack.MinStake)
	}
	if c.Blackjack.Presets == nil {
		c.Blackjack.Presets = bj.Presets
	}
	if c.Blackjack.DealerDelayMS == 0 {
		c.Blackjack.DealerDelayMS = int(DefaultDealerDelay / time.Millisecond)
	}

	if len(c.Machines) == 0 {
		for _, spec := range session.DefaultCatalogue() {
			c.Machines = append(c.Machines, MachineConfig{
				ID:       spec.ID,
				Title:    spec.Title,
				TopPrize: spec.TopPrize,
				Hot:      spec.Hot,
				MinStake: spec.Limits.Min,
			})
		}
	}

	slot := session.SlotLimits()
	for i := range c.Machines {
		m := &c.Machines[i]
		if m.Title == "" {
			m.Title = m.ID
		}
		if m.MinStake == 0 {
			m.MinStake = slot.Min
		}
		if m.MaxStake == 0 {
			m.MaxStake = slot.Max
		}
		if m.StakeStep == 0 {
			m.StakeStep = slot.Step
		}
		if m.DefaultStake == 0 {
			m.DefaultStake = max(slot.Default, m.MinStake)
		}
		if m.Presets == nil {
			for _, p := range slot.Presets {
				if p >= m.MinStake && p <= m.MaxStake {
					m.Presets = append(m.Presets, p)
				}
			}
		}
		if m.SpinMS == 0 {
			m.SpinMS = int(DefaultSpinTime / time.Millisecond)
		}
		if m.FrameMS == 0 {
			m.FrameMS = int(DefaultFrameTime / time.Millisecond)
		}
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Blackjack.DealerDelayMS < 0 {
		return errors.New("dealer delay must not be negative")
	}
	for _, m := range c.Machines {
		if m.FrameMS <= 0 || m.SpinMS < m.FrameMS {
			return fmt.Errorf("machine %s: spin time must cover at least one frame", m.ID)
		}
		if _, err := m.payTable(); err != nil {
			return fmt.Errorf("machine %s: %w", m.ID, err)
		}
	}
	if _, err := c.Session(); err != nil {
		return err
	}
	return nil
}

// Session converts the configuration into session settings
func (c *Config) Session() (session.Config, error) {
	cfg := session.Config{
		StartingBalance: c.Wallet.StartingBalance,
		HistorySize:     c.Wallet.HistorySize,
		Blackjack: session.Limits{
			Min:     c.Blackjack.MinStake,
			Max:     c.Blackjack.MaxStake,
			Step:    c.Blackjack.StakeStep,
			Default: c.Blackjack.DefaultStake,
			Presets: c.Blackjack.Presets,
		},
	}

	for _, m := range c.Machines {
		table, err := m.payTable()
		if err != nil {
			return session.Config{}, fmt.Errorf("machine %s: %w", m.ID, err)
		}
		cfg.Machines = append(cfg.Machines, session.MachineSpec{
			ID:       m.ID,
			Title:    m.Title,
			TopPrize: m.TopPrize,
			Hot:      m.Hot,
			PayTable: table,
			Limits: session.Limits{
				Min:     m.MinStake,
				Max:     m.MaxStake,
				Step:    m.StakeStep,
				Default: m.DefaultStake,
				Presets: m.Presets,
			},
		})
	}

	if err := cfg.Validate(); err != nil {
		return session.Config{}, err
	}
	return cfg, nil
}

// DealerDelay is the pause between dealer draws when replaying a stand
func (c *Config) DealerDelay() time.Duration {
	return time.Duration(c.Blackjack.DealerDelayMS) * time.Millisecond
}

// Machine returns the configuration of one machine
func (c *Config) Machine(id string) (MachineConfig, bool) {
	for _, m := range c.Machines {
		if m.ID == id {
			return m, true
		}
	}
	return MachineConfig{}, false
}

// SpinTime is how long the reels animate
func (m MachineConfig) SpinTime() time.Duration {
	return time.Duration(m.SpinMS) * time.Millisecond
}

// FrameInterval is the pause between animation frames
func (m MachineConfig) FrameInterval() time.Duration {
	return time.Duration(m.FrameMS) * time.Millisecond
}

// FrameCount is the number of animation frames in one spin
func (m MachineConfig) FrameCount() int {
	return m.SpinMS / m.FrameMS
}

func (m MachineConfig) payTable() (slots.PayTable, error) {
	if len(m.PayLines) == 0 {
		return slots.DefaultPayTable(), nil
	}
	lines := make([]slots.PayLine, len(m.PayLines))
	for i, l := range m.PayLines {
		lines[i] = slots.PayLine{Symbol: slots.Symbol(l.Symbol), Multiplier: l.Multiplier}
	}
	return slots.NewPayTable(lines...)
}
