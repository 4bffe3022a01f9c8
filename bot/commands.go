package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/PaulSonOfLars/gotgbot/v2"
	"github.com/PaulSonOfLars/gotgbot/v2/ext"
	"github.com/google/uuid"

	"mealbook/entity"
	"mealbook/internal/database"
	"mealbook/lib/sl"
)

// invite creates a new invite code: `/invite [uses|unlimited] [days]`.
// Default is a single-use code with no expiry; a use count above one
// makes it bounded, "unlimited" removes the cap, and days sets expiry.
func (t *TgBot) invite(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.db == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)

	policy := entity.PolicySingle
	maxUses := 0
	if len(args) > 1 {
		if strings.EqualFold(args[1], "unlimited") {
			policy = entity.PolicyUnlimited
		} else {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				t.plainResponse(chatId, "Usage: `/invite [uses|unlimited] [days]`")
				return nil
			}
			if n > 1 {
				policy = entity.PolicyBounded
				maxUses = n
			}
		}
	}

	var expiresAt *time.Time
	if len(args) > 2 {
		days, err := strconv.Atoi(args[2])
		if err != nil || days < 1 {
			t.plainResponse(chatId, "Usage: `/invite [uses|unlimited] [days]`")
			return nil
		}
		at := time.Now().UTC().Add(time.Duration(days) * 24 * time.Hour)
		expiresAt = &at
	}

	code := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", ""))[:t.config.InviteCodeLength]

	inviteCode := &entity.InviteCode{
		Code:      code,
		Policy:    policy,
		MaxUses:   maxUses,
		Uses:      0,
		ExpiresAt: expiresAt,
		CreatedBy: chatId,
		CreatedAt: time.Now().UTC(),
	}

	err := t.db.CreateInviteCode(inviteCode)
	if err != nil {
		t.reportError(chatId, "/invite", err)
		return nil
	}

	t.plainResponse(chatId, fmt.Sprintf("Invite code: `%s` \\(%s\\)", Sanitize(code), Sanitize(describePolicy(inviteCode))))
	return nil
}

// codes lists all invite codes, newest first.
func (t *TgBot) codes(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.db == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	list, err := t.db.GetInviteCodes()
	if err != nil {
		t.reportError(chatId, "/codes", err)
		return nil
	}
	if len(list) == 0 {
		t.plainResponse(chatId, "No invite codes yet\\. Use `/invite` to create one\\.")
		return nil
	}

	var sb strings.Builder
	for _, code := range list {
		sb.WriteString(fmt.Sprintf("`%s` \\- %s\n", Sanitize(code.Code), Sanitize(describeState(code))))
	}
	t.plainResponse(chatId, sb.String())
	return nil
}

// code shows the state of a single invite code: `/code CODE`.
func (t *TgBot) code(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.db == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/code CODE`")
		return nil
	}

	code, err := t.db.GetInviteCode(args[1])
	if errors.Is(err, database.ErrCodeNotFound) {
		t.plainResponse(chatId, fmt.Sprintf("Code `%s` not found\\.", Sanitize(args[1])))
		return nil
	}
	if err != nil {
		t.reportError(chatId, "/code", err)
		return nil
	}

	desc := describeState(code)
	if code.LastUsedBy != "" {
		desc += fmt.Sprintf(", last used by %s", code.LastUsedBy)
	}
	t.plainResponse(chatId, fmt.Sprintf("`%s` \\- %s", Sanitize(code.Code), Sanitize(desc)))
	return nil
}

// revoke permanently disables a code: `/revoke CODE`.
func (t *TgBot) revoke(_ *tgbotapi.Bot, ctx *ext.Context) error {
	if t.db == nil {
		return nil
	}
	chatId := ctx.EffectiveUser.Id
	if !t.requireAdmin(chatId) {
		t.plainResponse(chatId, "Admin access required\\.")
		return nil
	}

	args := strings.Fields(ctx.EffectiveMessage.Text)
	if len(args) < 2 {
		t.plainResponse(chatId, "Usage: `/revoke CODE`")
		return nil
	}
	code := args[1]

	err := t.db.RevokeInviteCode(code)
	if err != nil {
		t.reportError(chatId, "/revoke", err)
		return nil
	}

	t.plainResponse(chatId, fmt.Sprintf("Code `%s` revoked\\.", Sanitize(code)))
	return nil
}

func (t *TgBot) help(_ *tgbotapi.Bot, ctx *ext.Context) error {
	chatId := ctx.EffectiveUser.Id
	var sb strings.Builder
	sb.WriteString("`/invite [uses|unlimited] [days]` \\- Create invite code\n")
	sb.WriteString("`/codes` \\- List invite codes\n")
	sb.WriteString("`/code CODE` \\- Show one code's state\n")
	sb.WriteString("`/revoke CODE` \\- Revoke invite code\n")
	t.plainResponse(chatId, sb.String())
	return nil
}

func (t *TgBot) reportError(chatId int64, cmd string, err error) {
	t.log.With(sl.Err(err)).Error(cmd)
	t.plainResponse(chatId, fmt.Sprintf("%s failed: %s", Sanitize(cmd), Sanitize(err.Error())))
}

func describePolicy(code *entity.InviteCode) string {
	switch code.Policy {
	case entity.PolicyUnlimited:
		return "unlimited"
	case entity.PolicyBounded:
		return fmt.Sprintf("%d uses", code.MaxUses)
	}
	return "single use"
}

func describeState(code *entity.InviteCode) string {
	desc := describePolicy(code)
	if code.Uses > 0 {
		desc += fmt.Sprintf(", used %d", code.Uses)
	}
	if code.Revoked {
		desc += ", revoked"
	}
	if code.Expired(time.Now().UTC()) {
		desc += ", expired"
	}
	return desc
}
