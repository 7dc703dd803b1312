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

package clouddisk

import "github.com/google/wire"

// ProviderSet provides the cloud-disk client.
var ProviderSet = wire.NewSet(ProvideClient)

// ProvideClient builds the client and reports every API call to observer.
func ProvideClient(conf Conf, observer Observer) *Client {
	return NewClient(conf, WithObserver(observer))
}
