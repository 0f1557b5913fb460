/*
Copyright 2025.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package traversal

import (
	"context"
)

// LayerVisitor implements star-managed state for one layer (Field or
// Shell): validation, auth, rate-limiting, topic routing. Visit may
// mutate the traversal in place (e.g. annotate headers) and may
// short-circuit with a local reflection by returning absorbed=true.
type LayerVisitor interface {
	Visit(ctx context.Context, trav *Traversal) (result VisitResult, absorbed bool, err error)
}

// VisitResult carries whatever a LayerVisitor wants reflected back
// when it absorbs a wave.
type VisitResult struct {
	Status  int
	Message string
}

// LayerVisitorFunc adapts a function to LayerVisitor.
type LayerVisitorFunc func(ctx context.Context, trav *Traversal) (VisitResult, bool, error)

func (f LayerVisitorFunc) Visit(ctx context.Context, trav *Traversal) (VisitResult, bool, error) {
	return f(ctx, trav)
}

// PassThroughVisitor never absorbs; it is the default Field/Shell
// visitor a star uses before any validation/auth/rate-limit policy is
// wired in.
var PassThroughVisitor = LayerVisitorFunc(func(ctx context.Context, trav *Traversal) (VisitResult, bool, error) {
	return VisitResult{}, false, nil
})
