package main

import (
	"platelens/config"
	"platelens/routes"
	"platelens/utils"
)

func main() {
	config.InitDB()
	utils.InitS3()
	r := routes.SetupRouter(config.DB)
	r.Run(":8080")
}
