package mailman

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// AddMembers subscribes `members` without sending welcome messages or owner
// notifications. It returns the members mailman confirmed as subscribed,
// members that were rejected (already subscribed, malformed, ...) are left
// out.
func (c *Client) AddMembers(ctx context.Context, members []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:AddMembers")
	defer span.End()
	span.SetAttributes(attribute.Int("members", len(members)))

	if len(members) == 0 {
		return []string{}, nil
	}

	token, err := c.csrfToken(ctx, "add")
	if err != nil {
		span.SetStatus(codes.Error, "failed to get csrf token")
		return nil, err
	}

	doc, _, err := c.submit(ctx, endpoint_members_add, map[string]string{
		field_token:                   token,
		field_subscribe_or_invite:     "0",
		field_send_welcome_msg:        "0",
		field_send_owner_notification: "0",
		field_subscribees:             strings.Join(members, "\n"),
		field_submit:                  c.submitLabel,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit")
		c.tel.ReportBroken(report_client_add_members, err)
		return nil, fmt.Errorf("mailman: add members: %w", err)
	}

	added := parseResultList(doc, c.layout)
	if len(added) < len(members) {
		c.tel.ReportDebug(
			report_client_add_members,
			fmt.Sprintf("%d of %d members not confirmed", len(members)-len(added), len(members)),
		)
	}
	return added, nil
}

// RemoveMembers unsubscribes `members` without sending acknowledgements or
// owner notifications. It returns the members mailman confirmed as removed.
func (c *Client) RemoveMembers(ctx context.Context, members []string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "client:RemoveMembers")
	defer span.End()
	span.SetAttributes(attribute.Int("members", len(members)))

	if len(members) == 0 {
		return []string{}, nil
	}

	token, err := c.csrfToken(ctx, "remove")
	if err != nil {
		span.SetStatus(codes.Error, "failed to get csrf token")
		return nil, err
	}

	doc, _, err := c.submit(ctx, endpoint_members_remove, map[string]string{
		field_token:                         token,
		field_send_unsub_ack:                "0",
		field_send_owner_unsub_notification: "0",
		field_unsubscribees:                 strings.Join(members, "\n"),
		field_submit:                        c.submitLabel,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit")
		c.tel.ReportBroken(report_client_remove_members, err)
		return nil, fmt.Errorf("mailman: remove members: %w", err)
	}

	removed := parseResultList(doc, c.layout)
	if len(removed) < len(members) {
		c.tel.ReportDebug(
			report_client_remove_members,
			fmt.Sprintf("%d of %d members not confirmed", len(members)-len(removed), len(members)),
		)
	}
	return removed, nil
}

// ChangeMember changes the address of member `from` to `to`. It returns true
// if mailman's confirmation heading mentions both addresses.
func (c *Client) ChangeMember(ctx context.Context, from, to string) (bool, error) {
	ctx, span := tracer.Start(ctx, "client:ChangeMember")
	defer span.End()

	if from == "" || to == "" {
		return false, nil
	}

	token, err := c.csrfToken(ctx, "change")
	if err != nil {
		span.SetStatus(codes.Error, "failed to get csrf token")
		return false, err
	}

	doc, _, err := c.submit(ctx, endpoint_members_change, map[string]string{
		field_token:       token,
		field_change_from: from,
		field_change_to:   to,
		field_submit:      c.submitLabel,
	})
	if err != nil {
		span.SetStatus(codes.Error, "failed to submit")
		c.tel.ReportBroken(report_client_change_member, err)
		return false, fmt.Errorf("mailman: change member: %w", err)
	}

	heading, ok := confirmationHeading(doc, c.layout)
	if !ok {
		c.tel.ReportWarning(
			report_client_change_member,
			fmt.Errorf("could not find confirmation heading"),
		)
		return false, nil
	}
	return confirmsChange(heading, from, to), nil
}
