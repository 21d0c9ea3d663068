// Command devtoken prints an OWNER access token for local testing of the
// property pricing routes.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/rental-pricing/internal/middleware"
	"github.com/iliyamo/rental-pricing/internal/utils"
)

func main() {
	_ = godotenv.Load()
	userID := flag.Uint64("user", 1, "user id placed in the sub claim")
	role := flag.String("role", middleware.RoleOwner, "role claim")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		log.Fatal().Msg("JWT_SECRET is not set")
	}
	tok, err := utils.NewAccessToken(secret, *userID, *role, *ttl)
	if err != nil {
		log.Fatal().Err(err).Msg("sign token")
	}
	fmt.Println(tok.Token)
}
