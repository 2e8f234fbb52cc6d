package room

import (
	"context"

	"github.com/mcoot/music-roulette/internal/model"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (no I, O, 0 or 1)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds re-rolls on collision
	maxCodeAttempts = 64
)

// GenerateCode returns a random room code. It does not check for collisions.
func (c *Controller) GenerateCode() model.RoomCode {
	return model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
}

// reserveCode finds an unused code and returns it with its lock held.
// The caller must release the lock once the room is saved.
func (c *Controller) reserveCode(ctx context.Context) (model.RoomCode, func(), error) {
	for range maxCodeAttempts {
		code := c.GenerateCode()
		if len(code) != CodeLength {
			continue
		}
		unlock := c.locks.Lock(code)
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			unlock()
			return "", nil, err
		}
		if !exists {
			return code, unlock, nil
		}
		unlock()
		c.logger.Warn("room code collision", codeAttr(code))
	}
	return "", nil, model.ErrCodeSpaceExhausted
}
