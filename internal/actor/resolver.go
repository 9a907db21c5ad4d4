package actor

import (
	"context"
	"log/slog"
	"strings"
)

// Resolver maps vendor sender identities onto actors.
type Resolver struct {
	store  *Store
	logger *slog.Logger
}

func NewResolver(log *slog.Logger, store *Store) *Resolver {
	return &Resolver{
		store:  store,
		logger: log.With(slog.String("service", "actor")),
	}
}

// ResolveOrCreate returns the actor for a vendor sender, creating one when
// the (provider, login) pair is new. phone is the vendor's digits-only id;
// it becomes the login as-is and the handle with a leading plus. Existing
// actors are returned unchanged, a changed display name does not update
// the stored one.
func (r *Resolver) ResolveOrCreate(ctx context.Context, provider, phone, displayName string) (Actor, bool, error) {
	given, family := SplitName(displayName)
	a, created, err := r.store.FindOrCreate(ctx, CreateInput{
		GivenName:  given,
		FamilyName: family,
		Handle:     "+" + phone,
		Provider:   provider,
		Login:      phone,
	})
	if err != nil {
		return Actor{}, false, err
	}
	if created {
		r.logger.Info("actor created",
			slog.String("actor_id", a.ID),
			slog.String("provider", provider))
	}
	return a, created, nil
}

// SplitName splits a display name into given and family parts at the first
// whitespace or comma. When either side comes out blank the whole name is
// kept as the given name.
func SplitName(name string) (given, family string) {
	name = strings.TrimSpace(name)
	cut := strings.IndexFunc(name, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if cut < 0 {
		return name, ""
	}
	given = strings.TrimSpace(name[:cut])
	family = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name[cut:]), ","))
	if given == "" || family == "" {
		return name, ""
	}
	return given, family
}
