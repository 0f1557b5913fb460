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

package loc

import (
	"github.com/Masterminds/semver/v3"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/labels"
)

// KindSelector matches particle kinds by category, sub-kind, and an
// optional version constraint against the kind's Specific, expressed
// as a label selector over the kind's synthesized label set. A driver
// declares one KindSelector per spec.md §5; traversal resolution and
// drivers lookup both match a Kind against a KindSelector.
type KindSelector struct {
	MatchLabels      map[string]string
	MatchExpressions []metav1.LabelSelectorRequirement

	// VersionConstraint, if set, is applied against the kind's Specific
	// version using semver range syntax (e.g. ">=1.0.0 <2.0.0").
	VersionConstraint string
}

// kindLabels synthesizes the label set a Kind presents to a selector:
// category, sub (when present), and vendor/product/variant from its
// Specific (when present).
func kindLabels(k Kind) labels.Set {
	set := labels.Set{"category": k.Category.String()}
	switch k.Category {
	case CategoryStar:
		if k.StarSub != "" {
			set["sub"] = string(k.StarSub)
		}
	case CategoryFile:
		if k.FileSub != "" {
			set["sub"] = string(k.FileSub)
		}
	case CategoryArtifact:
		if k.ArtSub != "" {
			set["sub"] = string(k.ArtSub)
		}
	}
	if k.Specific != nil {
		set["vendor"] = k.Specific.Vendor
		set["product"] = k.Specific.Product
		set["variant"] = k.Specific.Variant
	}
	return set
}

// Matches reports whether kind k satisfies selector sel.
func (sel KindSelector) Matches(k Kind) bool {
	labelSelector := &metav1.LabelSelector{
		MatchLabels:      sel.MatchLabels,
		MatchExpressions: sel.MatchExpressions,
	}
	parsed, err := metav1.LabelSelectorAsSelector(labelSelector)
	if err != nil {
		return false
	}
	if !parsed.Matches(kindLabels(k)) {
		return false
	}
	if sel.VersionConstraint != "" {
		if k.Specific == nil || k.Specific.Version == nil {
			return false
		}
		c, err := semver.NewConstraint(sel.VersionConstraint)
		if err != nil || !c.Check(k.Specific.Version) {
			return false
		}
	}
	return true
}
