package main

import (
	"context"
	"errors"
	"time"

	"github.com/skosovsky/trident"
)

type echoArgs struct {
	Message string `json:"message" description:"Text to echo back"`
}

func (e echoArgs) Validate() error {
	if e.Message == "" {
		return errors.New("message must not be empty")
	}
	return nil
}

type echoResult struct {
	Echoed string `json:"echoed"`
}

type addArgs struct {
	A float64 `json:"a" description:"First addend"`
	B float64 `json:"b" description:"Second addend"`
}

type addResult struct {
	Sum float64 `json:"sum"`
}

type divideArgs struct {
	Dividend float64 `json:"dividend"`
	Divisor  float64 `json:"divisor"`
}

func (d divideArgs) Validate() error {
	if d.Divisor == 0 {
		return errors.New("divisor must not be zero")
	}
	return nil
}

type divideResult struct {
	Quotient float64 `json:"quotient"`
}

type nowResult struct {
	Now string `json:"now" description:"Current UTC time in RFC 3339 format"`
}

// registerEndpoints fills the registry with the demo endpoints served
// by the binary.
func registerEndpoints(reg *trident.Registry) error {
	echo, err := trident.New("echo", "Echo a message",
		func(_ context.Context, in echoArgs) (echoResult, error) {
			return echoResult{Echoed: in.Message}, nil
		},
		trident.WithDescription("Returns the message unchanged. Rejects empty input."))
	if err != nil {
		return err
	}

	add, err := trident.New("add", "Add two numbers",
		func(_ context.Context, in addArgs) (addResult, error) {
			return addResult{Sum: in.A + in.B}, nil
		})
	if err != nil {
		return err
	}

	divide, err := trident.New("divide", "Divide one number by another",
		func(_ context.Context, in divideArgs) (divideResult, error) {
			return divideResult{Quotient: in.Dividend / in.Divisor}, nil
		})
	if err != nil {
		return err
	}

	now, err := trident.New("now", "Report the current time",
		func(_ context.Context, _ struct{}) (nowResult, error) {
			return nowResult{Now: time.Now().UTC().Format(time.RFC3339)}, nil
		})
	if err != nil {
		return err
	}

	for _, ep := range []trident.Endpoint{echo, add, divide, now} {
		if err := reg.Register(ep); err != nil {
			return err
		}
	}
	return nil
}
