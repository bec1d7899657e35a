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

package hir

import (
    `fmt`
)

// MalformedIRError occures when the input IR violates a structural
// invariant: unbalanced inline-frame markers, field access on a non-object
// type, or a type assertion contradicted by the producer's static type.
// The simplifier aborts without partial output.
type MalformedIRError struct {
    Func   string
    Instr  string
    Reason string
}

func (self MalformedIRError) Error() string {
    if self.Instr != "" {
        return fmt.Sprintf("MalformedIR(%s): %s: at %q", self.Func, self.Reason, self.Instr)
    } else {
        return fmt.Sprintf("MalformedIR(%s): %s", self.Func, self.Reason)
    }
}

// ConvergenceError occures when the fixed-point driver exceeds its
// iteration bound or a round reports change without shrinking the progress
// metric. Every valid rewrite is progress-making, so this is an internal
// invariant violation, never a silent no-op.
type ConvergenceError struct {
    Func   string
    Rounds int
    Metric int
}

func (self ConvergenceError) Error() string {
    return fmt.Sprintf("Convergence(%s): no fixed point after %d rounds, metric %d", self.Func, self.Rounds, self.Metric)
}
