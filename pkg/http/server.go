// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package http

import (
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

// NewApp creates the fiber application with the server settings of cfg.
func NewApp(cfg Http) *fiber.App {
	cfg.SetDefaults()
	return fiber.New(fiber.Config{
		AppName:               "newsroom",
		ReadTimeout:           seconds(cfg.ReadTimeout),
		WriteTimeout:          seconds(cfg.WriteTimeout),
		IdleTimeout:           seconds(cfg.IdleTimeout),
		BodyLimit:             cfg.BodyLimit,
		ProxyHeader:           cfg.ProxyHeader,
		DisableStartupMessage: true,
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		ErrorHandler:          ErrorHandler,
	})
}
