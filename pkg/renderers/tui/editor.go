package tui

import (
	"context"
	"fmt"

	"github.com/goliatone/go-sectionform/pkg/diagnostics"
	"github.com/goliatone/go-sectionform/pkg/form"
	"github.com/goliatone/go-sectionform/pkg/links"
	"github.com/goliatone/go-sectionform/pkg/schema"
)

// Item choices offered for each element of a repeatable block.
const (
	ItemEdit     = "Edit"
	ItemSkip     = "Skip"
	ItemRemove   = "Remove"
	ItemMoveUp   = "Move up"
	ItemMoveDown = "Move down"
)

var itemChoices = []string{ItemEdit, ItemSkip, ItemRemove, ItemMoveUp, ItemMoveDown}

// Edit walks session on the terminal. Every answer is applied to the session
// as a mutation, so normalization repairs and rejections are reported as
// they happen. The form is re-synthesized after each structural edit.
func (r *Renderer) Edit(ctx context.Context, session *form.Session) error {
	if ctx == nil {
		return fmt.Errorf("tui: context is required")
	}
	if session == nil || session.Closed() {
		return ErrSessionClosed
	}
	f := session.Form()
	if err := r.info(ctx, f.Label); err != nil {
		return err
	}
	for _, d := range session.LoadDiagnostics() {
		if err := r.info(ctx, describe(d)); err != nil {
			return err
		}
	}
	return r.editControl(ctx, session, f.Pages, schema.Path{})
}

func (r *Renderer) editControl(ctx context.Context, session *form.Session, pages []links.Page, path schema.Path) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c, ok := session.Form().Root.Find(path)
	if !ok {
		return nil
	}

	switch c.Kind {
	case schema.KindObject:
		for _, section := range c.Groups {
			if section.Collapsed {
				expand, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Edit %s fields?", section.Label)})
				if err != nil {
					return err
				}
				if !expand {
					continue
				}
				session.ToggleGroup(path, section.Group)
			}
			for _, child := range section.Controls {
				if err := r.editControl(ctx, session, pages, child.Path); err != nil {
					return err
				}
			}
		}
		return nil
	case schema.KindArray:
		return r.editArray(ctx, session, pages, c)
	}

	if c.ReadOnly || len(path) == 0 {
		return r.info(ctx, fmt.Sprintf("%s: %s", displayLabel(c), formatValue(c.Value)))
	}
	value, err := r.prompt(ctx, pages, c, nil)
	if err != nil {
		return err
	}
	return r.report(ctx, session.SetScalar(path, value))
}

func (r *Renderer) editArray(ctx context.Context, session *form.Session, pages []links.Page, c *form.Control) error {
	path := c.Path
	for idx := 0; ; {
		current, ok := session.Form().Root.Find(path)
		if !ok || idx >= len(current.Items) {
			break
		}
		item := current.Items[idx]
		choice, err := r.driver.Select(ctx, SelectConfig{
			Message: displayLabel(item.Control),
			Options: itemChoices,
		})
		if err != nil {
			return err
		}
		switch itemChoice(choice) {
		case ItemEdit:
			if err := r.editControl(ctx, session, pages, item.Control.Path); err != nil {
				return err
			}
			idx++
		case ItemRemove:
			if err := r.report(ctx, session.Remove(path, idx)); err != nil {
				return err
			}
		case ItemMoveUp:
			if err := r.report(ctx, session.MoveUp(path, idx)); err != nil {
				return err
			}
			idx++
		case ItemMoveDown:
			result := session.MoveDown(path, idx)
			if err := r.report(ctx, result); err != nil {
				return err
			}
			if !result.Applied {
				idx++
			}
		default:
			idx++
		}
	}

	for {
		add, err := r.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Add an item to %s?", displayLabel(c))})
		if err != nil {
			return err
		}
		if !add {
			return nil
		}
		result := session.Append(path)
		if err := r.report(ctx, result); err != nil {
			return err
		}
		if !result.Applied {
			return nil
		}
		current, ok := session.Form().Root.Find(path)
		if !ok || len(current.Items) == 0 {
			return nil
		}
		last := current.Items[len(current.Items)-1]
		if err := r.editControl(ctx, session, pages, last.Control.Path); err != nil {
			return err
		}
	}
}

func (r *Renderer) report(ctx context.Context, result form.MutationResult) error {
	for _, d := range result.Diagnostics {
		if err := r.info(ctx, describe(d)); err != nil {
			return err
		}
	}
	return nil
}

func itemChoice(idx int) string {
	if idx < 0 || idx >= len(itemChoices) {
		return ItemSkip
	}
	return itemChoices[idx]
}

func describe(d diagnostics.Diagnostic) string {
	if d.Path == "" {
		return d.Message
	}
	return fmt.Sprintf("%s: %s", d.Path, d.Message)
}
