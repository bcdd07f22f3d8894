package pipeline

import (
	"context"
	"fmt"

	"minuteminds/internal/gateway"
	"minuteminds/internal/logging"
	"minuteminds/internal/services"
)

// ToggleItem flips the status of the key item at the given position and
// persists the full list remotely. The local flip is optimistic: a failed
// persistence call leaves it in place and surfaces the error.
func (c *Controller) ToggleItem(ctx context.Context, index int) error {
	return c.toggle(ctx, func(items []KeyItem) (int, error) {
		if index < 0 || index >= len(items) {
			return 0, services.Wrap(services.ErrPrecondition, "pipeline", "toggle item",
				fmt.Sprintf("no item at position %d", index), nil)
		}
		return index, nil
	})
}

// ToggleItemByID flips the status of the key item with the given identifier.
func (c *Controller) ToggleItemByID(ctx context.Context, id string) error {
	return c.toggle(ctx, func(items []KeyItem) (int, error) {
		for i, item := range items {
			if item.ID == id {
				return i, nil
			}
		}
		return 0, services.Wrap(services.ErrPrecondition, "pipeline", "toggle item", "no item with id "+id, nil)
	})
}

func (c *Controller) toggle(ctx context.Context, locate func([]KeyItem) (int, error)) error {
	c.mu.Lock()
	if !c.auth.Verified() {
		c.mu.Unlock()
		return services.Wrap(services.ErrPrecondition, "pipeline", "toggle item", "login required", nil)
	}
	if len(c.doc.KeyItems) == 0 {
		c.mu.Unlock()
		return services.Wrap(services.ErrPrecondition, "pipeline", "toggle item", "extract items first", nil)
	}

	index, err := locate(c.doc.KeyItems)
	if err != nil {
		c.mu.Unlock()
		return err
	}

	if c.doc.KeyItems[index].Done() {
		c.doc.KeyItems[index].Status = StatusOpen
	} else {
		c.doc.KeyItems[index].Status = StatusDone
	}

	documentID := c.doc.ID
	wire := make([]gateway.KeyItem, len(c.doc.KeyItems))
	for i, item := range c.doc.KeyItems {
		wire[i] = gateway.KeyItem{Text: item.Text, Assignee: item.Assignee, Status: item.Status}
	}
	c.persistLocked()
	c.mu.Unlock()

	ctx = services.WithDocumentID(ctx, documentID)
	if err := c.gw.PersistItems(ctx, documentID, wire); err != nil {
		c.logger.Warn("item toggle not persisted remotely; local state kept",
			logging.String(logging.FieldDocumentID, documentID),
			logging.Error(err))
		return err
	}
	return nil
}
