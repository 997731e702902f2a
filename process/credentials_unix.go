//go:build unix

/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package process

import (
	"os/exec"
	"os/user"
	"strconv"
	"syscall"
)

// applyCredentials gives the child its own session (so a signal to papa
// never reaches it) and, when requested, drops it to the configured
// uid/gid before exec, mirroring the original's setgid+initgroups dance
// (papa/server/proc.py) so the child keeps its user's real supplementary
// groups instead of losing them to Go's forkExec, which calls
// setgroups(0, nil) whenever Credential is set without an explicit list.
func applyCredentials(cmd *exec.Cmd, spec Spec) {
	attr := &syscall.SysProcAttr{Setsid: true}

	if spec.UID != nil || spec.GID != nil {
		cred := &syscall.Credential{}
		if spec.UID != nil {
			cred.Uid = uint32(*spec.UID)
			if groups, err := supplementaryGroups(*spec.UID); err == nil {
				cred.Groups = groups
			}
		}
		if spec.GID != nil {
			cred.Gid = uint32(*spec.GID)
		}
		attr.Credential = cred
	}

	cmd.SysProcAttr = attr
}

// supplementaryGroups resolves the real supplementary-group list for uid,
// the way initgroups(username, gid) would, so a dropped-privilege child
// keeps the groups its user is actually a member of.
func supplementaryGroups(uid int) ([]uint32, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return nil, err
	}

	ids, err := u.GroupIds()
	if err != nil {
		return nil, err
	}

	groups := make([]uint32, 0, len(ids))
	for _, id := range ids {
		gid, convErr := strconv.Atoi(id)
		if convErr != nil {
			continue
		}
		groups = append(groups, uint32(gid))
	}
	return groups, nil
}

// ResolveUser turns a uid or username string into a numeric uid, mirroring
// "uid=<id-or-name>" option handling for "make process".
func ResolveUser(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		if _, lookErr := user.LookupId(s); lookErr != nil {
			return 0, lookErr
		}
		return id, nil
	}

	u, err := user.Lookup(s)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Uid)
}

// PrimaryGroup resolves uid's primary gid, mirroring the original's
// pwd.getpwuid(uid).pw_gid fallback used when "make process" is given
// uid= without an accompanying gid=.
func PrimaryGroup(uid int) (int, error) {
	u, err := user.LookupId(strconv.Itoa(uid))
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Gid)
}

// ResolveGroup turns a gid or group name string into a numeric gid.
func ResolveGroup(s string) (int, error) {
	if id, err := strconv.Atoi(s); err == nil {
		if _, lookErr := user.LookupGroupId(s); lookErr != nil {
			return 0, lookErr
		}
		return id, nil
	}

	g, err := user.LookupGroup(s)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(g.Gid)
}
