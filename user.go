package attendascot

import (
	"fmt"

	"github.com/hashicorp/golang-lru"
	"github.com/nlopes/slack"
	"github.com/spf13/viper"

	"github.com/attendascot/attendascot/config"
)

// UserInfoFinder defines the interface for finding a slack user's info
type UserInfoFinder interface {
	GetUserInfo(userID string) (user *slack.User, err error)
}

// cachingUserInfoFinder holds a cache and a loading UserInfoFinder to
// implement UserInfoFinder loading entries from cache when possible
type cachingUserInfoFinder struct {
	loader           UserInfoFinder
	logger           SLogger
	userProfileCache *lru.ARCCache
}

// NewCachingUserInfoFinder creates a new user info finder with caching
// enabled when the configured cache size is greater than zero. It requires an
// implementation of the interface doing the actual loading on cache misses
func NewCachingUserInfoFinder(v *viper.Viper, loader UserInfoFinder, logger SLogger) (uf UserInfoFinder, err error) {
	cuf := new(cachingUserInfoFinder)

	cs := v.GetInt(config.UserInfoCacheSizeKey)
	if cs > 0 {
		cuf.userProfileCache, err = lru.NewARC(cs)
		if err != nil {
			return nil, err
		}
	}

	cuf.loader = loader
	cuf.logger = logger

	return cuf, nil
}

// GetUserInfo gets the user info, from cache if present, or returns an error
// and a nil user if not found or if an error occurred during retrieval
func (c *cachingUserInfoFinder) GetUserInfo(userID string) (u *slack.User, err error) {
	if c.userProfileCache == nil {
		c.logger.Debugf("user info cache disabled, loading info for [%s] directly\n", userID)

		return c.loader.GetUserInfo(userID)
	}

	if cached, exists := c.userProfileCache.Get(userID); exists {
		c.logger.Debugf("user info for [%s] found in cache\n", userID)

		user, ok := cached.(slack.User)
		if !ok {
			return nil, fmt.Errorf("error converting cached value for user id [%s]", userID)
		}

		return &user, nil
	}

	c.logger.Debugf("user info for [%s] not in cache, retrieving and caching\n", userID)

	u, err = c.loader.GetUserInfo(userID)
	if err != nil {
		return nil, err
	}

	c.userProfileCache.Add(userID, *u)

	return u, nil
}
