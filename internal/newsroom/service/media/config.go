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

package media

import "time"

// Conf configures delivery and ingestion of media assets.
type Conf struct {
	LinkTTL       time.Duration // lifetime of an issued download href
	BaseFolder    string        // remote folder new uploads go under
	MaxUploadSize int64         // bytes
	CacheControl  CacheControlConf
	Prewarm       PrewarmConf
}

// PrewarmConf drives the job that renews persisted hrefs before they expire.
type PrewarmConf struct {
	Enabled  bool
	Schedule string        // cron spec, e.g. "@every 30m"
	Window   time.Duration // renew hrefs expiring within this window
	Batch    int           // assets per run
}

// CacheControlConf holds the max-age of each delivery case.
type CacheControlConf struct {
	Original time.Duration // original image
	Preview  time.Duration // preview served as requested
	Fallback time.Duration // preview requested, original served
	Default  time.Duration // video and other kinds
}

func (c *Conf) SetDefaults() {
	if c.LinkTTL <= 0 {
		c.LinkTTL = 23 * time.Hour
	}
	if c.BaseFolder == "" {
		c.BaseFolder = "disk:/media"
	}
	if c.MaxUploadSize <= 0 {
		c.MaxUploadSize = 200 << 20
	}
	if c.CacheControl.Original <= 0 {
		c.CacheControl.Original = 365 * 24 * time.Hour
	}
	if c.CacheControl.Preview <= 0 {
		c.CacheControl.Preview = 7 * 24 * time.Hour
	}
	if c.CacheControl.Fallback <= 0 {
		c.CacheControl.Fallback = time.Hour
	}
	if c.CacheControl.Default <= 0 {
		c.CacheControl.Default = time.Hour
	}
	if c.Prewarm.Schedule == "" {
		c.Prewarm.Schedule = "@every 30m"
	}
	if c.Prewarm.Window <= 0 {
		c.Prewarm.Window = 2 * time.Hour
	}
	if c.Prewarm.Batch <= 0 {
		c.Prewarm.Batch = 200
	}
}
