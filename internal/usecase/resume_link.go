package usecase

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"

	"github.com/xavierca1/fitness-sales/internal/config"
	"github.com/xavierca1/fitness-sales/internal/entity"
)

// LinkBuilder encodes a sale's current field values into a re-submittable
// form link. Codes are emitted numerically so a pre-filled form round-trips
// through the same parsers that read the original submission.
type LinkBuilder struct {
	forms     config.FormURLs
	shortener Shortener
	shorten   bool
}

func NewLinkBuilder(forms config.FormURLs, shortener Shortener, shorten bool) *LinkBuilder {
	return &LinkBuilder{forms: forms, shortener: shortener, shorten: shorten}
}

// ResumeLink builds the corrective link for a draft: the sale type's public
// form pre-filled with the given values.
func (b *LinkBuilder) ResumeLink(ctx context.Context, saleType entity.SaleType, values url.Values) (string, error) {
	base := b.forms.URLFor(saleType)
	if base == "" {
		return "", fmt.Errorf("no re-input form configured for %s", saleType)
	}
	return b.finish(ctx, base, values)
}

// ProgramRequestLink builds the staff upload link for a sale whose profile
// matched no existing workout program. The key parameter is the universal
// key unless an admin is targeting one specific sale.
func (b *LinkBuilder) ProgramRequestLink(ctx context.Context, sale *entity.Sale, key string) (string, error) {
	if b.forms.ProgramRequest == "" {
		return "", fmt.Errorf("no program-request form configured")
	}

	values := url.Values{}
	values.Set(FieldKey, key)
	if sale.Agenda != nil {
		sig := sale.Agenda.Signature()
		values.Set("gender", strconv.Itoa(int(sig.Gender)))
		values.Set("activity_level", strconv.Itoa(int(sig.ActivityLevel)))
		values.Set("purpose", strconv.Itoa(int(sig.Purpose)))
		values.Set("focus", strconv.Itoa(int(sig.Focus)))
		values.Set("diseases", sig.Diseases)
	}
	return b.finish(ctx, b.forms.ProgramRequest, values)
}

func (b *LinkBuilder) finish(ctx context.Context, base string, values url.Values) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("bad form url %q: %w", base, err)
	}
	u.RawQuery = values.Encode()
	long := u.String()

	if !b.shorten || b.shortener == nil {
		return long, nil
	}
	short, err := b.shortener.Shorten(ctx, long)
	if err != nil {
		// A long link is still a working link.
		log.Printf("⚠️ [LINK] shortener failed, sending long url: %v", err)
		return long, nil
	}
	return short, nil
}

// SaleValues flattens the sale's current client and agenda fields, plus its
// key, into form values for a resumption or reconstruction link.
func SaleValues(sale *entity.Sale, key string) url.Values {
	values := url.Values{}
	values.Set(FieldKey, key)

	if c := sale.Client; c != nil {
		setIf(values, "name", c.Name)
		setIf(values, "email", c.Email)
		setIf(values, "phone", c.Phone)
	}

	a := sale.Agenda
	if a == nil {
		return values
	}
	if a.Gender != nil {
		values.Set("gender", strconv.Itoa(int(*a.Gender)))
	}
	if a.Age != nil {
		values.Set("age", strconv.Itoa(*a.Age))
	}
	if a.Height != nil {
		values.Set("height", strconv.Itoa(*a.Height))
	}
	if a.Weight != nil {
		values.Set("weight", strconv.Itoa(*a.Weight))
	}
	if a.ActivityLevel != nil {
		values.Set("activity_level", strconv.Itoa(int(*a.ActivityLevel)))
	}
	if a.DailyActivity != nil {
		values.Set("daily_activity", strconv.Itoa(int(*a.DailyActivity)))
	}
	if a.Purpose != nil {
		values.Set("purpose", strconv.Itoa(int(*a.Purpose)))
	}
	if a.Focus != nil {
		values.Set("focus", strconv.Itoa(int(*a.Focus)))
	}
	setIf(values, "diseases", a.Diseases)
	setIf(values, "trainer", a.Trainer)
	return values
}

func setIf(values url.Values, key, value string) {
	if value != "" {
		values.Set(key, value)
	}
}
