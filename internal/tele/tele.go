// Package tele publishes panel state over MQTT for remote monitoring.
// Disabled by default; the panel works the same without a broker.
package tele

import (
	"context"

	"github.com/temoto/appanel/log2"
)

type Teler interface {
	Init(ctx context.Context, log *log2.Log, c Config) error
	// State publishes the current display snapshot as JSON.
	State(payload []byte)
	Error(err error)
	Close()
}

func New(c Config) Teler {
	if !c.Enable {
		return NewStub()
	}
	return &transportMqtt{}
}

type stub struct{}

func NewStub() Teler { return stub{} }

func (stub) Init(context.Context, *log2.Log, Config) error { return nil }
func (stub) State([]byte)                                  {}
func (stub) Error(error)                                   {}
func (stub) Close()                                        {}
