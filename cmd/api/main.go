package main

import (
	"go.uber.org/fx"

	"github.com/sello-app/sello/internal/app"
)

func main() {
	fx.New(app.Module).Run()
}
