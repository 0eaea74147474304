package resolver

import (
	"context"

	"polilink/internal/store"
)

// partyCache memoizes party-name resolution for one run. It is owned by the
// run that created it and must not be shared across concurrent runs.
type partyCache struct {
	store       *store.Store
	byParty     map[int64]string
	byPolitician map[int64]string
}

func newPartyCache(st *store.Store) *partyCache {
	return &partyCache{
		store:       st,
		byParty:     make(map[int64]string),
		byPolitician: make(map[int64]string),
	}
}

// nameForPolitician resolves the party name of a politician, caching both
// the politician and party lookups.
func (c *partyCache) nameForPolitician(ctx context.Context, politicianID int64) (string, error) {
	if name, ok := c.byPolitician[politicianID]; ok {
		return name, nil
	}
	politician, err := c.store.PoliticianByID(ctx, politicianID)
	if err != nil {
		return "", err
	}
	name := politician.PartyName
	if name == "" && politician.PartyID != nil {
		name, err = c.name(ctx, *politician.PartyID)
		if err != nil {
			return "", err
		}
	}
	c.byPolitician[politicianID] = name
	return name, nil
}

func (c *partyCache) name(ctx context.Context, partyID int64) (string, error) {
	if name, ok := c.byParty[partyID]; ok {
		return name, nil
	}
	party, err := c.store.PartyByID(ctx, partyID)
	if err != nil {
		return "", err
	}
	c.byParty[partyID] = party.Name
	return party.Name, nil
}
