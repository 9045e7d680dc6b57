package cli

import (
	"errors"
	"fmt"
)

type PenaltyCmd struct {
	Gems   int    `arg:"" optional:"" help:"Gems to deduct. Defaults to the penalty_gems setting."`
	Reason string `help:"Reason shown in the notification."`
}

func (c *PenaltyCmd) Run(ctx *Context) error {
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}
	if c.Gems < 0 {
		return errors.New("penalty must not be negative")
	}

	change, err := engine.RecordPenaltyEvent(c.Gems, c.Reason)
	if err != nil {
		return err
	}
	if change.Applied < change.Requested {
		fmt.Printf("Balance was only %d, deducted what was there.\n", change.Applied)
	}
	return nil
}

type GemsCmd struct {
	Deduct GemsDeductCmd `cmd:"" help:"Deduct gems from the balance."`
}

type GemsDeductCmd struct {
	Amount int    `arg:"" help:"Gems to deduct."`
	Reason string `help:"Reason for the deduction." default:"Manual deduction"`
	Silent bool   `help:"Deduct without notifications. The level always follows the balance."`
}

func (c *GemsDeductCmd) Run(ctx *Context) error {
	if c.Amount <= 0 {
		return errors.New("amount must be positive")
	}
	engine, err := ctx.Engine()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	change, err := engine.Deduct(c.Amount, c.Reason, c.Silent)
	if err != nil {
		return err
	}
	if c.Silent {
		fmt.Printf("Deducted %d gems, balance %d.\n", change.Applied, change.Balance)
	}
	return nil
}
