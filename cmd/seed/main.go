package main

import (
	"context"
	"flag"
	"time"

	"github.com/cppla/boardcore/config"
	"github.com/cppla/boardcore/models"
	"github.com/cppla/boardcore/seed"
	"github.com/cppla/boardcore/utils"
)

func main() {
	users := flag.Int("users", 10, "accounts to create")
	posts := flag.Int("posts", 3, "posts per account")
	comments := flag.Int("comments", 2, "comments per post")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	flag.Parse()

	cfg := config.Load()
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	db := config.InitDatabase(cfg, models.All()...)

	res, err := seed.NewFactory(db, *randSeed).Run(context.Background(), seed.Options{
		Users:           *users,
		PostsPerUser:    *posts,
		CommentsPerPost: *comments,
	})
	if err != nil {
		utils.Sugar.Fatalw("seeding failed", "error", err, "created", res)
	}
	utils.Sugar.Infow("seeding done",
		"users", res.Users,
		"posts", res.Posts,
		"comments", res.Comments,
		"likes", res.Likes,
		"password", seed.Password,
	)
}
