/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package topology

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperledger/fabric-sdk-go/third_party/github.com/hyperledger/fabric/common/policydsl"

	"github.com/clolc/fablogen/pkg/utils/errors"
)

var memberPrincipal = regexp.MustCompile(`'([[:alnum:].-]+)\.member'`)

// MSPID returns the MSP identifier of the organization with the passed name.
func MSPID(orgName string) string {
	return orgName + "MSP"
}

// MemberPrincipal returns the membership predicate of the organization.
func MemberPrincipal(orgName string) string {
	return "'" + MSPID(orgName) + ".member'"
}

// EndorsementPolicy requires a signature from a member of every passed
// organization, in the passed order.
func EndorsementPolicy(orgNames ...string) string {
	terms := make([]string, len(orgNames))
	for i, org := range orgNames {
		terms[i] = MemberPrincipal(org)
	}
	return "AND(" + strings.Join(terms, ", ") + ")"
}

// PolicyMSPIDs returns the MSP identifiers of the member principals in policy,
// in order of appearance.
func PolicyMSPIDs(policy string) []string {
	var ids []string
	for _, m := range memberPrincipal.FindAllStringSubmatch(policy, -1) {
		ids = append(ids, m[1])
	}
	return ids
}

// ValidatePolicy checks that policy is a well-formed signature policy.
func ValidatePolicy(policy string) error {
	if _, err := policydsl.FromString(policy); err != nil {
		return errors.Wrapf(err, "invalid endorsement policy [%s]", policy)
	}
	return nil
}

func describePrincipals(ids []string) string {
	return fmt.Sprintf("[%s]", strings.Join(ids, ", "))
}
