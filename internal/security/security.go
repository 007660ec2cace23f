/*
 * This file is part of EduVox (https://github.com/eduvoxlabs/eduvox).
 * Copyright (C) 2025 EduVox Labs
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Affero General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
 * GNU Affero General Public License for more details.
 *
 * You should have received a copy of the GNU Affero General Public License
 * along with this program. If not, see <https://www.gnu.org/licenses/>.
 */

package security

import (
	"regexp"
	"strings"
)

// unsafeTitleChars matches every character that is illegal in file names on
// at least one supported platform.
var unsafeTitleChars = regexp.MustCompile(`[\\/*?:"<>|]`)

// SanitizeLogInput removes newline characters to prevent log injection attacks.
// This function should be used for all user-controlled data before logging.
func SanitizeLogInput(input string) string {
	sanitized := strings.ReplaceAll(input, "\n", "")
	sanitized = strings.ReplaceAll(sanitized, "\r", "")
	return sanitized
}

// SanitizeTitle strips characters that are unsafe in filesystem paths from a
// lecture title. The result is only used for artifact naming; the stored
// record keeps the original title untouched.
func SanitizeTitle(title string) string {
	return strings.TrimSpace(unsafeTitleChars.ReplaceAllString(title, ""))
}
