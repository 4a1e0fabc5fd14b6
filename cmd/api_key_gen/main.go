package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/google/uuid"

	"agrolog/groundstation/internal/db"
	gormModels "agrolog/groundstation/internal/models/gorm"
)

// api_key_gen provisions one API key in the key store. It honors the same
// PG_HOST / GS_DB_PATH environment as the server, so it works against
// whichever store the server uses.
func main() {
	label := flag.String("label", "", "optional label for the key")
	flag.Parse()

	orm, err := db.InitORM()
	if err != nil {
		log.Fatalf("open key store: %v", err)
	}

	key := gormModels.ApiKey{
		ID:     uuid.New().String(),
		Status: true,
		Label:  *label,
	}
	if err := orm.Create(&key).Error; err != nil {
		log.Fatalf("insert api key: %v", err)
	}

	fmt.Println("New API Key:", key.ID)
}
