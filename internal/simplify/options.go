/*
 * Copyright 2023 The Cinder Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package simplify

// Options tunes the driver. The zero value is the production configuration.
type Options struct {
    // Disabled lists pass descriptions (see PassNames) to skip. Meant for
    // debugging and for the CLI harness, not for production pipelines.
    Disabled []string

    // MaxRounds caps the fixed-point iteration. Zero derives the cap from
    // the initial progress metric, which is always sufficient for valid
    // rewrite rules.
    MaxRounds int
}

// PassNames lists the pipeline passes in execution order.
func PassNames() []string {
    names := make([]string, 0, len(_passes))
    for _, p := range _passes {
        names = append(names, p.desc)
    }
    return names
}

func (self Options) disabled(desc string) bool {
    for _, d := range self.Disabled {
        if d == desc {
            return true
        }
    }
    return false
}

func (self Options) maxRounds(metric int) int {
    if self.MaxRounds > 0 {
        return self.MaxRounds
    }
    return metric + 8
}
